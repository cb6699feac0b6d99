package interaction

import (
	"testing"

	"github.com/mapmarks/overlay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditMarker_LegacyColorShownAsHex(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{Lat: 1, Lon: 2, PopupText: "Old", Color: "red"}

	require.NoError(t, h.m.EditMarker("m1"))

	assert.Equal(t, EditPicking, h.m.State())
	require.Len(t, h.ui.editorProps, 1)
	p := h.ui.editorProps[0]
	assert.Equal(t, "Old", p.Text)
	assert.Equal(t, "#cc0000", p.Selected)
	sel, ok := h.m.EditSelection()
	require.True(t, ok)
	assert.Equal(t, "#cc0000", sel.Hex)
}

func TestEditMarker_MissingColorDefaults(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old"}

	require.NoError(t, h.m.EditMarker("m1"))
	assert.Equal(t, "#0066cc", h.ui.editorProps[0].Selected)
}

func TestEditMarker_NotFound(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.m.EditMarker("nope"))
	assert.Equal(t, []string{"Error getting marker data: Marker not found"}, h.ui.alerts)
	assert.Empty(t, h.ui.editors)
}

func TestEditMarker_TransportFailure(t *testing.T) {
	h := newHarness(t)
	h.gw.err = errNetwork

	assert.Error(t, h.m.EditMarker("m1"))
	assert.Equal(t, []string{"Failed to get marker data"}, h.ui.alerts)
}

func TestSaveEdit_EmptyKeepsEditorOpen(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old", Color: "#123456"}
	require.NoError(t, h.m.EditMarker("m1"))

	require.NoError(t, h.m.SaveEdit("   "))

	assert.Equal(t, []string{"Please enter a description"}, h.ui.alerts)
	assert.Empty(t, h.gw.updates)
	assert.False(t, h.ui.editors[0].closed)
	assert.Equal(t, EditPicking, h.m.State())
	assert.False(t, h.hasState())
}

func TestSaveEdit_Success(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old", Color: "green"}
	require.NoError(t, h.m.EditMarker("m1"))

	h.m.EditWheel(75, 75)
	h.gw.storeState = func() { assert.True(t, h.hasState()) }
	require.NoError(t, h.m.SaveEdit(" New name "))

	require.Len(t, h.gw.updates, 1)
	assert.Equal(t, core.UpdateMarkerRequest{MarkerID: "m1", PopupText: "New name", Color: "#808080"}, h.gw.updates[0])
	assert.True(t, h.ui.editors[0].closed)
	assert.Equal(t, 1, h.ui.reloads)
	assert.Equal(t, Idle, h.m.State())
}

func TestSaveEdit_UnchangedColorSentAsHex(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old", Color: "violet"}
	require.NoError(t, h.m.EditMarker("m1"))

	require.NoError(t, h.m.SaveEdit("Old"))
	assert.Equal(t, "#8800cc", h.gw.updates[0].Color, "named tokens are never sent")
}

func TestSaveEdit_Failure(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old"}
	require.NoError(t, h.m.EditMarker("m1"))

	h.m.EditSwatch("#ff0000")
	h.gw.err = remoteErr{"Marker not found"}
	assert.Error(t, h.m.SaveEdit("Renamed"))

	assert.False(t, h.hasState())
	assert.Equal(t, []string{"Error: Marker not found"}, h.ui.alerts)
	assert.Zero(t, h.ui.reloads)
	assert.False(t, h.ui.editors[0].closed, "a failed save keeps the editor open")
	assert.Equal(t, Idle, h.m.State())
	sel, ok := h.m.EditSelection()
	require.True(t, ok)
	assert.Equal(t, "#ff0000", sel.Hex)
}

func TestSaveEdit_RetryAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old"}
	require.NoError(t, h.m.EditMarker("m1"))

	h.gw.err = errNetwork
	assert.Error(t, h.m.SaveEdit("Renamed"))
	require.False(t, h.ui.editors[0].closed)

	h.gw.err = nil
	require.NoError(t, h.m.SaveEdit("Renamed"))

	assert.Len(t, h.gw.updates, 2)
	assert.True(t, h.ui.editors[0].closed)
	assert.Equal(t, 1, h.ui.reloads)
	assert.Equal(t, Idle, h.m.State())
}

func TestEditor_SecondOpenLeavesOne(t *testing.T) {
	h := newHarness(t)
	h.gw.records["a"] = core.MarkerRecord{PopupText: "A"}
	h.gw.records["b"] = core.MarkerRecord{PopupText: "B"}

	require.NoError(t, h.m.EditMarker("a"))
	require.NoError(t, h.m.EditMarker("b"))

	assert.True(t, h.ui.editors[0].closed)
	assert.False(t, h.ui.editors[1].closed)

	h.ui.editorProps[0].OnSave("stale")
	assert.Empty(t, h.gw.updates)

	h.ui.editorProps[1].OnSave("B2")
	require.Len(t, h.gw.updates, 1)
	assert.Equal(t, "b", h.gw.updates[0].MarkerID)
}

func TestCancelEdit(t *testing.T) {
	h := newHarness(t)
	h.gw.records["m1"] = core.MarkerRecord{PopupText: "Old"}
	require.NoError(t, h.m.EditMarker("m1"))

	h.m.CancelEdit()
	assert.True(t, h.ui.editors[0].closed)
	assert.Equal(t, Idle, h.m.State())
	assert.NoError(t, h.m.SaveEdit("x"))
	assert.Empty(t, h.gw.updates)
}

func TestDeleteMarker(t *testing.T) {
	h := newHarness(t)
	h.ui.confirm = false
	require.NoError(t, h.m.DeleteMarker("m1"))
	assert.Empty(t, h.gw.deletes)

	h.ui.confirm = true
	require.NoError(t, h.m.DeleteMarker("m1"))
	assert.Equal(t, []string{"m1"}, h.gw.deletes)
	assert.Equal(t, []string{"Marker deleted!"}, h.ui.alerts)
	assert.Equal(t, 1, h.ui.reloads)
}

func TestDeleteMarker_Failure(t *testing.T) {
	h := newHarness(t)
	h.gw.err = errNetwork

	assert.Error(t, h.m.DeleteMarker("m1"))
	assert.False(t, h.hasState())
	assert.Equal(t, []string{"Failed to delete marker"}, h.ui.alerts)
}
