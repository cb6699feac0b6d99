// Package gormstore implements storage.Backend on top of GORM. It serves
// both the SQLite and the Postgres configurations; the database.Manager
// decides which dialect is behind it.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mapmarks/overlay/internal/database"
	"github.com/mapmarks/overlay/internal/geo"
	"github.com/mapmarks/overlay/internal/model"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/pkg/core"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Backend stores markers, memories and visibility history in a SQL database.
type Backend struct {
	db  *database.Manager
	now func() time.Time
}

// New wraps a connected database manager.
func New(db *database.Manager) *Backend {
	return &Backend{db: db, now: time.Now}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	return b.db.Setup()
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) conn(ctx context.Context) *gorm.DB {
	return b.db.DB.WithContext(ctx)
}

// AddMarker inserts a marker under a fresh id.
func (b *Backend) AddMarker(ctx context.Context, rec core.MarkerRecord) (string, error) {
	point, err := geo.Point3857(core.LatLng{Lat: rec.Lat, Lng: rec.Lon})
	if err != nil {
		return "", err
	}
	m := model.Marker{
		ID:          uuid.NewString(),
		Lat:         rec.Lat,
		Lon:         rec.Lon,
		PopupText:   rec.PopupText,
		TooltipText: rec.TooltipText,
		Color:       rec.Color,
		Position:    point,
	}
	if err := b.conn(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("failed to insert marker: %w", err)
	}
	return m.ID, nil
}

func (b *Backend) find(ctx context.Context, id string) (model.Marker, error) {
	var m model.Marker
	err := b.conn(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, storage.ErrNotFound
	}
	return m, err
}

// GetMarker returns one marker.
func (b *Backend) GetMarker(ctx context.Context, id string) (core.MarkerRecord, error) {
	m, err := b.find(ctx, id)
	if err != nil {
		return core.MarkerRecord{}, err
	}
	return m.Record(), nil
}

// UpdateMarker changes the description and, when given, the color.
func (b *Backend) UpdateMarker(ctx context.Context, id, popupText, color string) error {
	updates := map[string]interface{}{"popup_text": popupText}
	if color != "" {
		updates["color"] = color
	}
	res := b.conn(ctx).Model(&model.Marker{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update marker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteMarker removes the marker and its memory in one transaction.
func (b *Backend) DeleteMarker(ctx context.Context, id string) error {
	return b.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("marker_id = ?", id).Delete(&model.Memory{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Marker{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// ListMarkers returns every marker ordered by creation time.
func (b *Backend) ListMarkers(ctx context.Context) ([]core.StoredMarker, error) {
	var markers []model.Marker
	if err := b.conn(ctx).Preload("Memory").Order("created_at, id").Find(&markers).Error; err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	out := make([]core.StoredMarker, 0, len(markers))
	for i := range markers {
		m := &markers[i]
		out = append(out, core.StoredMarker{
			ID:           m.ID,
			MarkerRecord: m.Record(),
			HasMemory:    m.Memory != nil && m.Memory.Text != "",
		})
	}
	return out, nil
}

// SetMemory upserts the memory of an existing marker.
func (b *Backend) SetMemory(ctx context.Context, markerID, text string) error {
	if _, err := b.find(ctx, markerID); err != nil {
		return err
	}
	mem := model.Memory{MarkerID: markerID, Text: text}
	return b.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "marker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
	}).Create(&mem).Error
}

// GetMemory returns the memory attached to a marker.
func (b *Backend) GetMemory(ctx context.Context, markerID string) (string, error) {
	var mem model.Memory
	err := b.conn(ctx).Where("marker_id = ?", markerID).Take(&mem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && mem.Text == "") {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return mem.Text, nil
}

// RecordVisibility appends a visibility report row.
func (b *Backend) RecordVisibility(ctx context.Context, markers []core.VisibleMarker) error {
	if markers == nil {
		markers = []core.VisibleMarker{}
	}
	payload, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	return b.conn(ctx).Create(&model.VisibilityReport{
		Time:    b.now().UTC(),
		Count:   len(markers),
		Payload: datatypes.JSON(payload),
	}).Error
}
