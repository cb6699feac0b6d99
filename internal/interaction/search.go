package interaction

import (
	"github.com/mapmarks/overlay/internal/util"
	"github.com/mapmarks/overlay/pkg/core"
)

const SearchZoom = 12

// Search centres the map on the first geocoder hit and shows it as a
// temporary result pin.
func (m *Machine) Search(query string) error {
	query = trim(query)
	if query == "" || m.geocoder == nil {
		return nil
	}
	m.ui.SearchMessage("Searching...")

	places, err := m.geocoder.Search(m.ctx, query)
	if err != nil {
		m.log.Error("search error", "query", query, "error", err)
		m.ui.SearchMessage("Search failed")
		return err
	}
	if len(places) == 0 {
		m.ui.SearchMessage("No results found")
		return nil
	}

	place := places[0]
	if mp, ok := m.slot.Get(); ok {
		mp.SetView(core.LatLng{Lat: place.Lat, Lng: place.Lon}, SearchZoom)
	}
	m.ui.SearchMessage("")
	m.ui.ShowSearchResult(place, func() { m.AddSearchResult(place) })
	return nil
}

// AddSearchResult opens the picker with the search hit as the target.
func (m *Machine) AddSearchResult(place core.Place) {
	m.openPicker(core.LatLng{Lat: place.Lat, Lng: place.Lon}, util.FirstSegment(place.DisplayName))
}
