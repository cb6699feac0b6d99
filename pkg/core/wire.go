// pkg/core/wire.go
package core

// Response statuses used by the annotation endpoints.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse is the envelope every annotation endpoint answers with.
type StatusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	MarkerID string `json:"marker_id,omitempty"`
}

// OK reports whether the server accepted the request.
func (r StatusResponse) OK() bool {
	return r.Status == StatusSuccess
}

// CreateMarkerRequest is the body of POST /add_marker.
// Lat and Lon are pointers so the server can tell a missing field from zero.
type CreateMarkerRequest struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	PopupText string   `json:"popup_text"`
	Color     string   `json:"color"`
}

// UpdateMarkerRequest is the body of POST /edit_marker.
type UpdateMarkerRequest struct {
	MarkerID  string `json:"marker_id"`
	PopupText string `json:"popup_text"`
	Color     string `json:"color"`
}

// DeleteMarkerRequest is the body of POST /delete_marker.
type DeleteMarkerRequest struct {
	MarkerID string `json:"marker_id"`
}

// AddMemoryRequest is the body of POST /add_memory.
type AddMemoryRequest struct {
	MarkerID   string `json:"marker_id"`
	MemoryText string `json:"memory_text"`
}

// MarkerRecord is a stored marker as returned by GET /get_marker/{id}.
type MarkerRecord struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	PopupText   string  `json:"popup_text"`
	TooltipText *string `json:"tooltip_text"`
	Color       string  `json:"color"`
}

// StoredMarker is a marker with its id and whether a memory is attached.
type StoredMarker struct {
	ID string `json:"id"`
	MarkerRecord
	HasMemory bool `json:"has_memory"`
}

// MarkerResponse is the body of GET /get_marker/{id}.
type MarkerResponse struct {
	StatusResponse
	Marker *MarkerRecord `json:"marker,omitempty"`
}

// MemoryResponse is the body of GET /get_memory/{id}.
type MemoryResponse struct {
	StatusResponse
	Memory string `json:"memory,omitempty"`
}

// VisibilityReport is the body of POST /visible_markers.
type VisibilityReport struct {
	VisibleMarkers []VisibleMarker `json:"visible_markers"`
}

// VisibilityAck is the answer to POST /visible_markers.
type VisibilityAck struct {
	Status       string   `json:"status"`
	VisibleCount int      `json:"visible_count"`
	MarkerNames  []string `json:"marker_names"`
}

// VisibleMarkersResponse is the body of GET /api/visible_markers.
type VisibleMarkersResponse struct {
	Status         string          `json:"status"`
	VisibleMarkers []VisibleMarker `json:"visible_markers"`
	Count          int             `json:"count"`
	MarkerNames    []string        `json:"marker_names"`
}

// MemoryTriggerResponse is the body of GET /api/memory_trigger.
type MemoryTriggerResponse struct {
	Status       string `json:"status"`
	HasTrigger   bool   `json:"has_trigger"`
	TriggerData  []int  `json:"trigger_data"`
	MarkerNumber int    `json:"marker_number,omitempty"`
	ColorRGB     []int  `json:"color_rgb,omitempty"`
}
