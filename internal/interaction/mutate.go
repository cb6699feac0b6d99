package interaction

import (
	"errors"
	"strings"

	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/internal/util"
	"github.com/mapmarks/overlay/pkg/core"
)

// remoteError is satisfied by errors that carry a message from the server.
type remoteError interface {
	error
	RemoteMessage() string
}

func trim(s string) string { return strings.TrimSpace(s) }

// failureMessage renders err for an alert. Server-side rejections show the
// server message, transport failures the fallback.
func failureMessage(err error, fallback string) string {
	var re remoteError
	if errors.As(err, &re) {
		msg := re.RemoteMessage()
		if msg == "" {
			msg = "Unknown error"
		}
		return "Error: " + msg
	}
	return fallback
}

// saveViewport captures the viewport right before a mutating request.
func (m *Machine) saveViewport() {
	if mp, ok := m.slot.Get(); ok {
		m.cache.Save(mp)
	}
}

// finish settles a mutation: reload on success, discard the saved viewport
// and alert on failure. The machine is Idle afterwards either way.
func (m *Machine) finish(op string, err error, success, fallback string) error {
	m.setState(Idle)
	if err != nil {
		m.log.Error("marker request failed", "op", op, "error", err)
		m.metrics.Mutation(m.ctx, op, "error")
		m.cache.Discard()
		m.ui.Alert(failureMessage(err, fallback))
		return err
	}
	m.metrics.Mutation(m.ctx, op, "success")
	m.ui.Alert(success)
	m.ui.Reload()
	return nil
}

func (m *Machine) create(at core.LatLng, text, hex string) error {
	m.log.Info("adding marker", "lat", at.Lat, "lng", at.Lng, "color", hex)
	m.setState(Mutating)
	m.saveViewport()

	lat, lon := at.Lat, at.Lng
	err := m.gw.Create(m.ctx, core.CreateMarkerRequest{
		Lat:       &lat,
		Lon:       &lon,
		PopupText: text,
		Color:     hex,
	})
	fallback := "Failed to add marker"
	if err != nil {
		fallback += ": " + err.Error()
	}
	return m.finish("create", err, "Marker added successfully!", fallback)
}

func (m *Machine) update(id, text, hex string) error {
	m.setState(Mutating)
	m.saveViewport()
	err := m.gw.Update(m.ctx, core.UpdateMarkerRequest{MarkerID: id, PopupText: text, Color: hex})
	return m.finish("update", err, "Marker updated successfully!", "Failed to update marker")
}

// EditMarker fetches a marker and opens the editor for it. Legacy colour
// names are shown as their hex value.
func (m *Machine) EditMarker(id string) error {
	rec, err := m.gw.Get(m.ctx, id)
	if err != nil {
		m.log.Error("could not load marker", "id", id, "error", err)
		var re remoteError
		if errors.As(err, &re) {
			m.ui.Alert("Error getting marker data: " + re.RemoteMessage())
		} else {
			m.ui.Alert("Failed to get marker data")
		}
		return err
	}
	m.openEditor(id, rec.PopupText, colorutil.DisplayHex(rec.Color))
	return nil
}

// DeleteMarker removes a marker after the user confirms.
func (m *Machine) DeleteMarker(id string) error {
	if !m.ui.Confirm("Are you sure you want to delete this marker?") {
		return nil
	}
	m.setState(Mutating)
	m.saveViewport()
	err := m.gw.Delete(m.ctx, id)
	return m.finish("delete", err, "Marker deleted!", "Failed to delete marker")
}

// AddMemory attaches a text or link to a marker.
func (m *Machine) AddMemory(id string) error {
	text, ok := m.ui.Prompt("Enter memory (text or URL):", "")
	text = trim(text)
	if !ok || text == "" {
		return nil
	}
	m.setState(Mutating)
	m.saveViewport()
	err := m.gw.AddMemory(m.ctx, id, text)
	return m.finish("memory", err, "Memory added!", "Failed to add memory")
}

// ViewMemory shows a marker's memory; links are opened instead.
func (m *Machine) ViewMemory(id string) error {
	memory, err := m.gw.GetMemory(m.ctx, id)
	if err != nil {
		m.log.Warn("no memory for marker", "id", id, "error", err)
		m.ui.Alert("No memory found")
		return err
	}
	if util.IsLink(memory) {
		m.ui.OpenLink(memory)
	} else {
		m.ui.Alert("Memory: " + memory)
	}
	m.log.Info("memory view triggered", "id", id)
	return nil
}
