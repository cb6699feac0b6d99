package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mapmarks/overlay/internal/bridge"
	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/internal/storage"
	"github.com/mapmarks/overlay/internal/util"
	"github.com/mapmarks/overlay/internal/web"
	"github.com/mapmarks/overlay/pkg/core"
)

const (
	defaultPopupText = "Marker"
	defaultColor     = "blue"
	// triggerColor is used when a marker has no color stored.
	triggerColor = "#0000ff"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/", s.indexHandler())
	r.Post("/add_marker", s.addMarkerHandler())
	r.Get("/get_marker/{id}", s.getMarkerHandler())
	r.Post("/edit_marker", s.editMarkerHandler())
	r.Post("/delete_marker", s.deleteMarkerHandler())
	r.Post("/add_memory", s.addMemoryHandler())
	r.Get("/get_memory/{id}", s.getMemoryHandler())
	r.Post("/visible_markers", s.visibleMarkersHandler())
	r.Get("/api/visible_markers", s.apiVisibleMarkersHandler())
	r.Get("/api/memory_trigger", s.memoryTriggerHandler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, core.StatusResponse{Status: core.StatusError, Message: msg})
}

func writeSuccess(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, core.StatusResponse{Status: core.StatusSuccess, Message: msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) mutation(ctx context.Context, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.rec.Mutation(ctx, op, outcome)
}

func (s *Server) indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markers, err := s.store.ListMarkers(r.Context())
		if err != nil {
			s.log.ErrorContext(r.Context(), "Failed to list markers", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		page, err := web.NewPage(s.cfg.Page, markers)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := web.Render(w, page); err != nil {
			s.log.ErrorContext(r.Context(), "Failed to render page", "error", err)
		}
	}
}

// addMarkerRequest keeps lat/lon untyped so a non-numeric value can be told
// apart from a malformed body.
type addMarkerRequest struct {
	Lat       any     `json:"lat"`
	Lon       any     `json:"lon"`
	PopupText *string `json:"popup_text"`
	Color     *string `json:"color"`
}

func (s *Server) addMarkerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMarkerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		lat, okLat := req.Lat.(float64)
		lon, okLon := req.Lon.(float64)
		if !okLat || !okLon {
			writeError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			writeError(w, http.StatusBadRequest, "Coordinates out of range")
			return
		}

		rec := core.MarkerRecord{Lat: lat, Lon: lon, PopupText: defaultPopupText, Color: defaultColor}
		if req.PopupText != nil {
			rec.PopupText = *req.PopupText
		}
		if req.Color != nil {
			rec.Color = *req.Color
		}

		id, err := s.store.AddMarker(r.Context(), rec)
		s.mutation(r.Context(), "create", err)
		if err != nil {
			s.log.ErrorContext(r.Context(), "Failed to add marker", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.log.InfoContext(r.Context(), "Added marker", "id", id, "text", rec.PopupText, "color", rec.Color,
			"lat", lat, "lon", lon)
		writeJSON(w, http.StatusOK, core.StatusResponse{
			Status:   core.StatusSuccess,
			Message:  "Marker added successfully",
			MarkerID: id,
		})
	}
}

func (s *Server) getMarkerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.store.GetMarker(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Marker not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, core.MarkerResponse{
			StatusResponse: core.StatusResponse{Status: core.StatusSuccess},
			Marker:         &rec,
		})
	}
}

func (s *Server) editMarkerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req core.UpdateMarkerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MarkerID == "" || req.PopupText == "" {
			writeError(w, http.StatusBadRequest, "Missing marker_id or popup_text")
			return
		}

		err := s.store.UpdateMarker(r.Context(), req.MarkerID, req.PopupText, req.Color)
		s.mutation(r.Context(), "update", err)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Marker not found")
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.log.InfoContext(r.Context(), "Updated marker", "id", req.MarkerID, "text", req.PopupText, "color", req.Color)
			writeSuccess(w, "Marker updated successfully")
		}
	}
}

func (s *Server) deleteMarkerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req core.DeleteMarkerRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MarkerID == "" {
			writeError(w, http.StatusBadRequest, "Missing marker_id")
			return
		}

		err := s.store.DeleteMarker(r.Context(), req.MarkerID)
		s.mutation(r.Context(), "delete", err)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Marker not found")
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.log.InfoContext(r.Context(), "Deleted marker", "id", req.MarkerID)
			writeSuccess(w, "Marker deleted successfully")
		}
	}
}

func (s *Server) addMemoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req core.AddMemoryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MarkerID == "" || req.MemoryText == "" {
			writeError(w, http.StatusBadRequest, "Missing marker_id or memory_text")
			return
		}

		err := s.store.SetMemory(r.Context(), req.MarkerID, req.MemoryText)
		s.mutation(r.Context(), "memory", err)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Marker not found")
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeSuccess(w, "Memory added successfully")
		}
	}
}

func (s *Server) getMemoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		memory, err := s.store.GetMemory(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No memory found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if rec, err := s.store.GetMarker(r.Context(), id); err == nil {
			s.armTrigger(r.Context(), id, rec)
		}
		writeJSON(w, http.StatusOK, core.MemoryResponse{
			StatusResponse: core.StatusResponse{Status: core.StatusSuccess},
			Memory:         memory,
		})
	}
}

// armTrigger queues the LED frame for a viewed memory. A marker without a
// number in its description gets LED number 0.
func (s *Server) armTrigger(ctx context.Context, id string, rec core.MarkerRecord) {
	color := rec.Color
	if color == "" {
		color = triggerColor
	}
	number, ok := util.MarkerNumber(rec.PopupText)
	if !ok {
		s.log.WarnContext(ctx, "No number found in marker description", "id", id, "text", rec.PopupText)
	}
	red, green, blue, _ := colorutil.RGB(color)
	s.trigger.Arm(bridge.MemoryTrigger(number, red, green, blue))
	s.log.InfoContext(ctx, "Memory view triggered", "id", id, "marker", number, "color", color)
}

func (s *Server) visibleMarkersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req core.VisibilityReport
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		markers := req.VisibleMarkers
		if markers == nil {
			markers = []core.VisibleMarker{}
		}
		s.fillColors(r.Context(), markers)
		s.visible.Replace(markers)
		s.rec.VisibilityReport(r.Context(), len(markers))
		s.hub.Broadcast(s.visibleResponse())

		for _, t := range s.telemetry {
			if err := t.RecordVisibility(r.Context(), markers); err != nil {
				s.log.WarnContext(r.Context(), "Failed to record visibility", "error", err)
			}
		}

		writeJSON(w, http.StatusOK, core.VisibilityAck{
			Status:       core.StatusSuccess,
			VisibleCount: len(markers),
			MarkerNames:  markerNames(markers),
		})
	}
}

// fillColors looks up the stored color of markers reported without one.
func (s *Server) fillColors(ctx context.Context, markers []core.VisibleMarker) {
	for i := range markers {
		if strings.TrimSpace(markers[i].Color) != "" || markers[i].ID == "" {
			continue
		}
		if rec, err := s.store.GetMarker(ctx, markers[i].ID); err == nil {
			markers[i].Color = rec.Color
		}
	}
}

func (s *Server) visibleResponse() core.VisibleMarkersResponse {
	markers := s.visible.Snapshot()
	return core.VisibleMarkersResponse{
		Status:         core.StatusSuccess,
		VisibleMarkers: markers,
		Count:          len(markers),
		MarkerNames:    markerNames(markers),
	}
}

func markerNames(markers []core.VisibleMarker) []string {
	names := make([]string, len(markers))
	for i, m := range markers {
		names[i] = m.Name
	}
	return names
}

func (s *Server) apiVisibleMarkersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.visibleResponse())
	}
}

func (s *Server) memoryTriggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, ok := s.trigger.Take()
		if !ok {
			writeJSON(w, http.StatusOK, core.MemoryTriggerResponse{Status: core.StatusSuccess})
			return
		}
		writeJSON(w, http.StatusOK, core.MemoryTriggerResponse{
			Status:       core.StatusSuccess,
			HasTrigger:   true,
			TriggerData:  bridge.TriggerInts(frame),
			MarkerNumber: int(frame[4]),
			ColorRGB:     []int{int(frame[5]), int(frame[6]), int(frame[7])},
		})
	}
}
