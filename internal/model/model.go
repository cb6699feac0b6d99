package model

import (
	"time"

	"github.com/mapmarks/overlay/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Marker{},
	&Memory{},
	&VisibilityReport{},
}

// Marker is a stored annotation. Lat/Lon are kept as received (EPSG:4326);
// Position is the same coordinate in EPSG:3857.
type Marker struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	PopupText   string     `json:"popupText" gorm:"size:255"`
	TooltipText *string    `json:"tooltipText" gorm:"size:255;default:NULL"`
	Color       string     `json:"color" gorm:"size:32"`
	Position    geom.Point `json:"position"`
	Memory      *Memory    `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:MarkerID"`
}

func (*Marker) TableName() string {
	return "markers"
}

// Record converts the row to its wire representation.
func (m *Marker) Record() core.MarkerRecord {
	return core.MarkerRecord{
		Lat:         m.Lat,
		Lon:         m.Lon,
		PopupText:   m.PopupText,
		TooltipText: m.TooltipText,
		Color:       m.Color,
	}
}

// Memory is the free text or link attached to a marker. One per marker.
type Memory struct {
	MarkerID  string    `json:"markerId" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Text      string    `json:"text"`
}

func (*Memory) TableName() string {
	return "memories"
}

// VisibilityReport is one viewport report from an overlay.
type VisibilityReport struct {
	ID      uint           `json:"id" gorm:"primarykey;autoIncrement"`
	Time    time.Time      `json:"time" gorm:"index:idx_visibility_time"`
	Count   int            `json:"count"`
	Payload datatypes.JSON `json:"payload"`
}

func (*VisibilityReport) TableName() string {
	return "visibility_reports"
}
