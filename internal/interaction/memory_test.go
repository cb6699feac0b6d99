package interaction

import (
	"testing"

	"github.com/mapmarks/overlay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMemory(t *testing.T) {
	h := newHarness(t)
	h.ui.promptReply = " https://example.com/p.jpg "

	require.NoError(t, h.m.AddMemory("m1"))

	assert.Equal(t, "https://example.com/p.jpg", h.gw.memories["m1"])
	assert.Equal(t, []string{"Memory added!"}, h.ui.alerts)
	assert.Equal(t, 1, h.ui.reloads)
	assert.True(t, h.hasState())
}

func TestAddMemory_Empty(t *testing.T) {
	h := newHarness(t)
	h.ui.promptReply = "  "

	require.NoError(t, h.m.AddMemory("m1"))
	assert.Empty(t, h.gw.memories)
	assert.False(t, h.hasState())
}

func TestAddMemory_Failure(t *testing.T) {
	h := newHarness(t)
	h.ui.promptReply = "note"
	h.gw.err = remoteErr{"Marker not found"}

	assert.Error(t, h.m.AddMemory("m1"))
	assert.False(t, h.hasState())
	assert.Equal(t, []string{"Error: Marker not found"}, h.ui.alerts)
}

func TestViewMemory(t *testing.T) {
	h := newHarness(t)
	h.gw.memories["link"] = "https://example.com/x"
	h.gw.memories["text"] = "we met here"

	require.NoError(t, h.m.ViewMemory("link"))
	require.NoError(t, h.m.ViewMemory("text"))
	assert.Error(t, h.m.ViewMemory("none"))

	assert.Equal(t, []string{"https://example.com/x"}, h.ui.links)
	assert.Equal(t, []string{"Memory: we met here", "No memory found"}, h.ui.alerts)
}

func TestSearch_FirstResultOnly(t *testing.T) {
	h := newHarness(t)
	h.geo.places = []core.Place{
		{Lat: 48.85, Lon: 2.35, DisplayName: "Paris, Île-de-France, France"},
		{Lat: 33.66, Lon: -95.55, DisplayName: "Paris, Texas"},
	}

	require.NoError(t, h.m.Search(" paris "))

	assert.Equal(t, core.LatLng{Lat: 48.85, Lng: 2.35}, h.mp.Center())
	assert.Equal(t, float64(SearchZoom), h.mp.Zoom())
	require.Len(t, h.ui.results, 1)
	assert.Equal(t, "Paris, Île-de-France, France", h.ui.results[0].DisplayName)

	h.ui.promptReply = "Paris"
	h.ui.onSearchAdd()
	assert.Equal(t, ColorPicking, h.m.State())
	require.NoError(t, h.m.ConfirmColor())

	assert.Equal(t, "Paris", h.ui.promptDefs[0])
	require.Len(t, h.gw.creates, 1)
	assert.Equal(t, 48.85, *h.gw.creates[0].Lat)
	assert.Equal(t, 2.35, *h.gw.creates[0].Lon)
}

func TestSearch_NoResults(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.m.Search("nowhere"))
	assert.Empty(t, h.ui.results)
	assert.Equal(t, []string{"Searching...", "No results found"}, h.ui.searchMsgs)
}

func TestSearch_EmptyQuery(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.m.Search("  "))
	assert.Empty(t, h.ui.searchMsgs)
}

func TestSearch_Error(t *testing.T) {
	h := newHarness(t)
	h.geo.err = errNetwork

	assert.ErrorIs(t, h.m.Search("x"), errNetwork)
	assert.Equal(t, []string{"Searching...", "Search failed"}, h.ui.searchMsgs)
}
