package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"twinview/internal/viewport"
)

const KeyHint = "Left/Right: both sides   A/D: left side   J/L: right side   Wheel: zoom   Drag: pan"

// ControlsPanel holds the file name filter and the interpolation choice.
type ControlsPanel struct {
	container   *fyne.Container
	filterEntry *widget.Entry
	filterError *widget.Label
	interpRadio *widget.RadioGroup

	filterChangeHandler func(string)
	interpChangeHandler func(viewport.Interpolation)
}

func NewControlsPanel() *ControlsPanel {
	cp := &ControlsPanel{}
	cp.setupControls()
	return cp
}

func (cp *ControlsPanel) setupControls() {
	cp.filterEntry = widget.NewEntry()
	cp.filterEntry.SetPlaceHolder("Filter file names (regular expression)")
	cp.filterEntry.OnSubmitted = cp.onFilterChanged
	cp.filterEntry.OnChanged = cp.onFilterChanged

	cp.filterError = widget.NewLabel("")
	cp.filterError.Importance = widget.DangerImportance
	cp.filterError.Hide()

	cp.interpRadio = widget.NewRadioGroup(
		[]string{viewport.Nearest.String(), viewport.Bilinear.String()},
		cp.onInterpolationSelected,
	)
	cp.interpRadio.Horizontal = true
	cp.interpRadio.Required = true
	cp.interpRadio.SetSelected(viewport.Bilinear.String())

	cp.container = container.NewBorder(
		nil, nil,
		widget.NewLabel("Filter"),
		container.NewHBox(cp.filterError, widget.NewSeparator(), cp.interpRadio),
		cp.filterEntry,
	)
}

func (cp *ControlsPanel) GetContainer() *fyne.Container {
	return cp.container
}

func (cp *ControlsPanel) SetFilterChangeHandler(handler func(string)) {
	cp.filterChangeHandler = handler
}

func (cp *ControlsPanel) SetInterpolationChangeHandler(handler func(viewport.Interpolation)) {
	cp.interpChangeHandler = handler
}

// SetFilter shows pattern without notifying the handler.
func (cp *ControlsPanel) SetFilter(pattern string) {
	handler := cp.filterChangeHandler
	cp.filterChangeHandler = nil
	cp.filterEntry.SetText(pattern)
	cp.filterChangeHandler = handler
}

func (cp *ControlsPanel) SetInterpolation(mode viewport.Interpolation) {
	cp.interpRadio.SetSelected(mode.String())
}

// SetFilterError shows msg next to the filter, or hides it when empty.
func (cp *ControlsPanel) SetFilterError(msg string) {
	cp.filterError.SetText(msg)
	if msg == "" {
		cp.filterError.Hide()
	} else {
		cp.filterError.Show()
	}
}

func (cp *ControlsPanel) onFilterChanged(pattern string) {
	if cp.filterChangeHandler != nil {
		cp.filterChangeHandler(pattern)
	}
}

func (cp *ControlsPanel) onInterpolationSelected(selected string) {
	mode, ok := viewport.ParseInterpolation(selected)
	if !ok {
		return
	}
	if cp.interpChangeHandler != nil {
		cp.interpChangeHandler(mode)
	}
}
