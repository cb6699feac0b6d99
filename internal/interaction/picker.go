package interaction

import (
	"github.com/mapmarks/overlay/internal/colorutil"
	"github.com/mapmarks/overlay/pkg/core"
)

// ColorSelection is the colour currently chosen in an open dialog.
type ColorSelection struct {
	Hex string
}

func defaultSelection() ColorSelection {
	return ColorSelection{Hex: core.DefaultColor}
}

type pickerSession struct {
	dialog      Dialog
	sel         ColorSelection
	target      core.LatLng
	description string
}

type editorSession struct {
	dialog   Dialog
	sel      ColorSelection
	markerID string
	saving   bool
}

// Selection returns the colour of the open picker.
func (m *Machine) Selection() (ColorSelection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.picker == nil {
		return ColorSelection{}, false
	}
	return m.picker.sel, true
}

// EditSelection returns the colour of the open editor.
func (m *Machine) EditSelection() (ColorSelection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editor == nil {
		return ColorSelection{}, false
	}
	return m.editor.sel, true
}

func (m *Machine) openPicker(target core.LatLng, description string) {
	m.mu.Lock()
	old := m.picker
	m.picker = nil
	m.mu.Unlock()
	if old != nil && old.dialog != nil {
		old.dialog.Close()
	}

	s := &pickerSession{sel: defaultSelection(), target: target, description: description}
	dlg := m.ui.ShowPicker(PickerProps{
		Title:     "Choose Marker Color",
		Selected:  s.sel.Hex,
		Palette:   colorutil.Palette[:],
		Wheel:     colorutil.DefaultWheel,
		OnWheel:   func(x, y float64) { m.pickerWheel(s, x, y) },
		OnSwatch:  func(hex string) { m.pickerSwatch(s, hex) },
		OnConfirm: func() { _ = m.confirmPicker(s) },
		OnCancel:  func() { m.cancelPicker(s) },
	})

	m.mu.Lock()
	s.dialog = dlg
	m.picker = s
	m.state = ColorPicking
	m.mu.Unlock()
}

// PickWheel selects the colour under a wheel click in the open picker.
func (m *Machine) PickWheel(x, y float64) {
	if s := m.currentPicker(); s != nil {
		m.pickerWheel(s, x, y)
	}
}

// PickSwatch selects a palette colour in the open picker.
func (m *Machine) PickSwatch(hex string) {
	if s := m.currentPicker(); s != nil {
		m.pickerSwatch(s, hex)
	}
}

// ConfirmColor closes the picker, asks for a description and creates the
// marker. Nothing is sent when the description is empty or cancelled.
func (m *Machine) ConfirmColor() error {
	s := m.currentPicker()
	if s == nil {
		return nil
	}
	return m.confirmPicker(s)
}

func (m *Machine) CancelPicker() {
	if s := m.currentPicker(); s != nil {
		m.cancelPicker(s)
	}
}

func (m *Machine) currentPicker() *pickerSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.picker
}

func (m *Machine) pickerWheel(s *pickerSession, x, y float64) {
	hex, ok := colorutil.DefaultWheel.ColorAt(x, y)
	if !ok {
		return
	}
	m.pickerSwatch(s, hex)
}

func (m *Machine) pickerSwatch(s *pickerSession, hex string) {
	m.mu.Lock()
	if m.picker != s {
		m.mu.Unlock()
		return
	}
	s.sel.Hex = hex
	dlg := s.dialog
	m.mu.Unlock()
	if dlg != nil {
		dlg.Update(hex)
	}
}

func (m *Machine) cancelPicker(s *pickerSession) {
	m.mu.Lock()
	if m.picker != s {
		m.mu.Unlock()
		return
	}
	m.picker = nil
	m.state = Idle
	m.mu.Unlock()
	if s.dialog != nil {
		s.dialog.Close()
	}
}

func (m *Machine) confirmPicker(s *pickerSession) error {
	m.mu.Lock()
	if m.picker != s {
		m.mu.Unlock()
		return nil
	}
	m.picker = nil
	sel := s.sel
	m.mu.Unlock()
	if s.dialog != nil {
		s.dialog.Close()
	}

	text, ok := m.ui.Prompt("Enter marker description:", s.description)
	text = trim(text)
	if !ok || text == "" {
		m.setState(Idle)
		return nil
	}
	return m.create(s.target, text, sel.Hex)
}

func (m *Machine) openEditor(id, text, hex string) {
	m.mu.Lock()
	old := m.editor
	m.editor = nil
	m.mu.Unlock()
	if old != nil && old.dialog != nil {
		old.dialog.Close()
	}

	s := &editorSession{sel: ColorSelection{Hex: hex}, markerID: id}
	dlg := m.ui.ShowEditor(EditorProps{
		MarkerID: id,
		Text:     text,
		Selected: hex,
		Palette:  colorutil.Palette[:],
		Wheel:    colorutil.DefaultWheel,
		OnWheel:  func(x, y float64) { m.editorWheel(s, x, y) },
		OnSwatch: func(hex string) { m.editorSwatch(s, hex) },
		OnSave:   func(text string) { _ = m.saveEditor(s, text) },
		OnCancel: func() { m.cancelEditor(s) },
	})

	m.mu.Lock()
	s.dialog = dlg
	m.editor = s
	m.state = EditPicking
	m.mu.Unlock()
}

// EditWheel selects the colour under a wheel click in the open editor.
func (m *Machine) EditWheel(x, y float64) {
	if s := m.currentEditor(); s != nil {
		m.editorWheel(s, x, y)
	}
}

// EditSwatch selects a palette colour in the open editor.
func (m *Machine) EditSwatch(hex string) {
	if s := m.currentEditor(); s != nil {
		m.editorSwatch(s, hex)
	}
}

// SaveEdit submits the open editor. An empty description keeps the editor
// open and sends nothing.
func (m *Machine) SaveEdit(text string) error {
	s := m.currentEditor()
	if s == nil {
		return nil
	}
	return m.saveEditor(s, text)
}

func (m *Machine) CancelEdit() {
	if s := m.currentEditor(); s != nil {
		m.cancelEditor(s)
	}
}

func (m *Machine) currentEditor() *editorSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editor
}

func (m *Machine) editorWheel(s *editorSession, x, y float64) {
	hex, ok := colorutil.DefaultWheel.ColorAt(x, y)
	if !ok {
		return
	}
	m.editorSwatch(s, hex)
}

func (m *Machine) editorSwatch(s *editorSession, hex string) {
	m.mu.Lock()
	if m.editor != s {
		m.mu.Unlock()
		return
	}
	s.sel.Hex = hex
	dlg := s.dialog
	m.mu.Unlock()
	if dlg != nil {
		dlg.Update(hex)
	}
}

func (m *Machine) cancelEditor(s *editorSession) {
	m.mu.Lock()
	if m.editor != s {
		m.mu.Unlock()
		return
	}
	m.editor = nil
	m.state = Idle
	m.mu.Unlock()
	if s.dialog != nil {
		s.dialog.Close()
	}
}

// saveEditor sends the edit. The editor closes only once the server accepts
// it. After a failure the machine is Idle but the editor stays open with the
// user's text and colour, so saving again retries.
func (m *Machine) saveEditor(s *editorSession, text string) error {
	text = trim(text)
	if text == "" {
		m.ui.Alert("Please enter a description")
		return nil
	}

	m.mu.Lock()
	if m.editor != s || s.saving {
		m.mu.Unlock()
		return nil
	}
	s.saving = true
	sel := s.sel
	m.mu.Unlock()

	err := m.update(s.markerID, text, sel.Hex)

	m.mu.Lock()
	s.saving = false
	if err == nil && m.editor == s {
		m.editor = nil
	}
	m.mu.Unlock()

	if err == nil && s.dialog != nil {
		s.dialog.Close()
	}
	return err
}
