package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"twinview/internal/gui/components"
	"twinview/internal/gui/widgets"
	"twinview/internal/panel"
)

// View lays out the two sides, the controls and the status bar.
type View struct {
	window   fyne.Window
	content  fyne.CanvasObject
	headers  [2]*components.SideHeader
	panels   [2]*widgets.PanelView
	controls *components.ControlsPanel
	status   *components.StatusBar
	split    *container.Split
}

func NewView(window fyne.Window, left, right *panel.Panel) *View {
	v := &View{window: window}
	v.initializeComponents(left, right)
	v.buildLayout()
	return v
}

func (v *View) initializeComponents(left, right *panel.Panel) {
	v.headers[Left] = components.NewSideHeader(Left.DefaultTitle())
	v.headers[Right] = components.NewSideHeader(Right.DefaultTitle())
	v.panels[Left] = widgets.NewPanelView(left)
	v.panels[Right] = widgets.NewPanelView(right)
	v.controls = components.NewControlsPanel()
	v.status = components.NewStatusBar()
}

func (v *View) buildLayout() {
	side := func(s Side) fyne.CanvasObject {
		return container.NewBorder(v.headers[s].GetContainer(), nil, nil, nil, v.panels[s])
	}

	v.split = container.NewHSplit(side(Left), side(Right))
	v.split.SetOffset(0.5)

	v.content = container.NewBorder(
		v.controls.GetContainer(),
		v.status.GetContainer(),
		nil, nil,
		v.split,
	)
}

func (v *View) GetContainer() fyne.CanvasObject {
	return v.content
}

func (v *View) Header(s Side) *components.SideHeader {
	return v.headers[s]
}

func (v *View) PanelView(s Side) *widgets.PanelView {
	return v.panels[s]
}

func (v *View) Controls() *components.ControlsPanel {
	return v.controls
}

func (v *View) Status() *components.StatusBar {
	return v.status
}
