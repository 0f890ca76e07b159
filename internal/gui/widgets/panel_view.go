package widgets

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"twinview/internal/panel"
)

const (
	PanelMinWidth  = 320
	PanelMinHeight = 240
)

// PanelView draws a panel.Panel and forwards pointer input to it.
type PanelView struct {
	widget.BaseWidget

	panel *panel.Panel
}

var (
	_ desktop.Hoverable = (*PanelView)(nil)
	_ desktop.Mouseable = (*PanelView)(nil)
	_ fyne.Draggable    = (*PanelView)(nil)
	_ fyne.Scrollable   = (*PanelView)(nil)
)

// NewPanelView takes over p.OnChange to schedule repaints.
func NewPanelView(p *panel.Panel) *PanelView {
	v := &PanelView{panel: p}
	v.ExtendBaseWidget(v)
	p.OnChange = v.Refresh
	return v
}

func (v *PanelView) Panel() *panel.Panel {
	return v.panel
}

func (v *PanelView) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(func(w, h int) image.Image {
		return v.panel.Render(w, h)
	})
	raster.ScaleMode = canvas.ImageScalePixels

	overlay := canvas.NewText("", theme.Color(theme.ColorNameForeground))
	overlay.Alignment = fyne.TextAlignCenter
	overlay.TextSize = theme.TextSubHeadingSize()

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = theme.Color(theme.ColorNameSeparator)
	border.StrokeWidth = 1

	r := &panelViewRenderer{view: v, raster: raster, overlay: overlay, border: border}
	r.updateOverlay()
	return r
}

func (v *PanelView) MouseIn(ev *desktop.MouseEvent) {
	v.panel.PointerMove(pos(ev.Position))
}

func (v *PanelView) MouseMoved(ev *desktop.MouseEvent) {
	v.panel.PointerMove(pos(ev.Position))
}

func (v *PanelView) MouseOut() {
	v.panel.PointerLeave()
}

func (v *PanelView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		v.panel.PointerPress(pos(ev.Position))
	}
}

func (v *PanelView) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		v.panel.PointerRelease()
	}
}

func (v *PanelView) Dragged(ev *fyne.DragEvent) {
	v.panel.PointerMove(pos(ev.Position))
}

func (v *PanelView) DragEnd() {
	v.panel.PointerRelease()
}

func (v *PanelView) Scrolled(ev *fyne.ScrollEvent) {
	x, y := pos(ev.Position)
	v.panel.Wheel(x, y, float64(ev.Scrolled.DY))
}

func pos(p fyne.Position) (float64, float64) {
	return float64(p.X), float64(p.Y)
}

type panelViewRenderer struct {
	view    *PanelView
	raster  *canvas.Raster
	overlay *canvas.Text
	border  *canvas.Rectangle
}

func (r *panelViewRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.border.Resize(size)

	textSize := r.overlay.MinSize()
	r.overlay.Resize(fyne.NewSize(size.Width, textSize.Height))
	r.overlay.Move(fyne.NewPos(0, (size.Height-textSize.Height)/2))

	r.view.panel.Resize(float64(size.Width), float64(size.Height))
}

func (r *panelViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(PanelMinWidth, PanelMinHeight)
}

func (r *panelViewRenderer) Refresh() {
	r.updateOverlay()
	r.raster.Refresh()
	r.overlay.Refresh()
}

func (r *panelViewRenderer) updateOverlay() {
	text := r.view.panel.Placeholder()
	r.overlay.Text = text
	if r.view.panel.ErrorMessage() != "" {
		r.overlay.Color = theme.Color(theme.ColorNameError)
	} else {
		r.overlay.Color = theme.Color(theme.ColorNameForeground)
	}
}

func (r *panelViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster, r.overlay, r.border}
}

func (r *panelViewRenderer) Destroy() {}
