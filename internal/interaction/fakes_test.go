package interaction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mapmarks/overlay/internal/mapview"
	"github.com/mapmarks/overlay/internal/mapview/mapviewtest"
	"github.com/mapmarks/overlay/internal/session"
	"github.com/mapmarks/overlay/pkg/core"
)

type fakeDialog struct {
	updates []string
	closed  bool
}

func (d *fakeDialog) Update(hex string) { d.updates = append(d.updates, hex) }
func (d *fakeDialog) Close()            { d.closed = true }

type fakeUI struct {
	menuAt      []core.Point
	menuHidden  int
	pickers     []*fakeDialog
	pickerProps []PickerProps
	editors     []*fakeDialog
	editorProps []EditorProps
	alerts      []string
	links       []string
	searchMsgs  []string
	results     []core.Place
	reloads     int

	confirm     bool
	promptReply string
	promptOK    bool
	prompts     []string
	promptDefs  []string
	viewport    Size
	onSearchAdd func()
}

func newFakeUI() *fakeUI {
	return &fakeUI{viewport: Size{Width: 1024, Height: 768}, confirm: true, promptOK: true}
}

func (u *fakeUI) ShowMenu(pos core.Point) { u.menuAt = append(u.menuAt, pos) }
func (u *fakeUI) HideMenu()               { u.menuHidden++ }

func (u *fakeUI) ShowPicker(p PickerProps) Dialog {
	d := &fakeDialog{}
	u.pickers = append(u.pickers, d)
	u.pickerProps = append(u.pickerProps, p)
	return d
}

func (u *fakeUI) ShowEditor(p EditorProps) Dialog {
	d := &fakeDialog{}
	u.editors = append(u.editors, d)
	u.editorProps = append(u.editorProps, p)
	return d
}

func (u *fakeUI) Alert(msg string)         { u.alerts = append(u.alerts, msg) }
func (u *fakeUI) Confirm(msg string) bool  { return u.confirm }
func (u *fakeUI) Reload()                  { u.reloads++ }
func (u *fakeUI) ViewportSize() Size       { return u.viewport }
func (u *fakeUI) OpenLink(url string)      { u.links = append(u.links, url) }
func (u *fakeUI) SearchMessage(msg string) { u.searchMsgs = append(u.searchMsgs, msg) }

func (u *fakeUI) Prompt(msg, def string) (string, bool) {
	u.prompts = append(u.prompts, msg)
	u.promptDefs = append(u.promptDefs, def)
	return u.promptReply, u.promptOK
}

func (u *fakeUI) ShowSearchResult(p core.Place, onAdd func()) {
	u.results = append(u.results, p)
	u.onSearchAdd = onAdd
}

func (u *fakeUI) openPickers() int {
	n := 0
	for _, d := range u.pickers {
		if !d.closed {
			n++
		}
	}
	return n
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string         { return "remote: " + e.msg }
func (e remoteErr) RemoteMessage() string { return e.msg }

type fakeGateway struct {
	creates  []core.CreateMarkerRequest
	updates  []core.UpdateMarkerRequest
	deletes  []string
	memories map[string]string
	records  map[string]core.MarkerRecord

	err error

	// storeState observes the session entry at request time.
	storeState func()
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{memories: map[string]string{}, records: map[string]core.MarkerRecord{}}
}

func (g *fakeGateway) observe() {
	if g.storeState != nil {
		g.storeState()
	}
}

func (g *fakeGateway) Create(_ context.Context, req core.CreateMarkerRequest) error {
	g.observe()
	g.creates = append(g.creates, req)
	return g.err
}

func (g *fakeGateway) Get(_ context.Context, id string) (core.MarkerRecord, error) {
	if g.err != nil {
		return core.MarkerRecord{}, g.err
	}
	r, ok := g.records[id]
	if !ok {
		return core.MarkerRecord{}, remoteErr{"Marker not found"}
	}
	return r, nil
}

func (g *fakeGateway) Update(_ context.Context, req core.UpdateMarkerRequest) error {
	g.observe()
	g.updates = append(g.updates, req)
	return g.err
}

func (g *fakeGateway) Delete(_ context.Context, id string) error {
	g.observe()
	g.deletes = append(g.deletes, id)
	return g.err
}

func (g *fakeGateway) AddMemory(_ context.Context, id, text string) error {
	g.observe()
	if g.err != nil {
		return g.err
	}
	g.memories[id] = text
	return nil
}

func (g *fakeGateway) GetMemory(_ context.Context, id string) (string, error) {
	m, ok := g.memories[id]
	if !ok {
		return "", remoteErr{"No memory found"}
	}
	return m, nil
}

type fakeGeocoder struct {
	places []core.Place
	err    error
}

func (g *fakeGeocoder) Search(context.Context, string) ([]core.Place, error) {
	return g.places, g.err
}

var errNetwork = errors.New("network down")

type harness struct {
	m     *Machine
	ui    *fakeUI
	gw    *fakeGateway
	geo   *fakeGeocoder
	store *session.MemoryStorage
	mp    *mapviewtest.Map
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mp := mapviewtest.New(800, 600)
	mp.SetView(core.LatLng{Lat: 40, Lng: -3}, 6)
	mp.SetContainer(core.Point{X: 100, Y: 50})

	slot := &mapview.Slot{}
	if err := slot.Set(mp); err != nil {
		t.Fatal(err)
	}

	store := session.NewMemoryStorage()
	now := time.UnixMilli(5_000_000)
	cache := session.New(store, log).WithClock(func() time.Time { return now })

	h := &harness{
		ui:    newFakeUI(),
		gw:    newFakeGateway(),
		geo:   &fakeGeocoder{},
		store: store,
		mp:    mp,
	}
	h.m = New(context.Background(), Options{
		UI:       h.ui,
		Gateway:  h.gw,
		Geocoder: h.geo,
		Cache:    cache,
		Slot:     slot,
		Logger:   log,
	})
	return h
}

func (h *harness) hasState() bool {
	_, ok, _ := h.store.Get(session.Key)
	return ok
}
