// Package viewport maps between view (widget) coordinates and image pixel
// coordinates and tracks fit, wheel zoom and drag pan.
package viewport

import "math"

// State of the controller.
type State int

const (
	Empty State = iota
	Fitted
	UserTransformed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Fitted:
		return "fitted"
	case UserTransformed:
		return "user-transformed"
	default:
		return "unknown"
	}
}

// Interpolation selects how the image is resampled for display.
type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
)

func (i Interpolation) String() string {
	if i == Bilinear {
		return "bilinear"
	}
	return "nearest"
}

// ParseInterpolation accepts "nearest" and "bilinear"; anything else is
// reported as not ok and yields Bilinear.
func ParseInterpolation(s string) (Interpolation, bool) {
	switch s {
	case "nearest":
		return Nearest, true
	case "bilinear":
		return Bilinear, true
	default:
		return Bilinear, false
	}
}

const (
	ZoomInFactor  = 1.25
	ZoomOutFactor = 0.8

	MinScale = 1.0 / 1024
	MaxScale = 1024.0
)

// Point is a position in view or image space.
type Point struct {
	X, Y float64
}

// Controller owns the view transform: view = image*scale + offset.
type Controller struct {
	state  State
	interp Interpolation

	viewW, viewH float64
	imgW, imgH   int

	scale  float64
	offset Point

	dragging bool
	last     Point
}

func New() *Controller {
	return &Controller{scale: 1, interp: Bilinear}
}

func (c *Controller) State() State                 { return c.state }
func (c *Controller) Scale() float64               { return c.scale }
func (c *Controller) Offset() Point                { return c.offset }
func (c *Controller) Interpolation() Interpolation { return c.interp }
func (c *Controller) Dragging() bool               { return c.dragging }

func (c *Controller) ViewSize() (w, h float64) { return c.viewW, c.viewH }
func (c *Controller) ImageSize() (w, h int)    { return c.imgW, c.imgH }

// SetInterpolation only changes how the next frame is drawn.
func (c *Controller) SetInterpolation(mode Interpolation) {
	c.interp = mode
}

// Clear drops the image and returns to Empty.
func (c *Controller) Clear() {
	c.state = Empty
	c.imgW, c.imgH = 0, 0
	c.scale = 1
	c.offset = Point{}
	c.dragging = false
}

// Fit shows the whole image centred, discarding any user zoom or pan.
func (c *Controller) Fit(imgW, imgH int) {
	if imgW <= 0 || imgH <= 0 {
		c.Clear()
		return
	}
	c.imgW, c.imgH = imgW, imgH
	c.state = Fitted
	c.applyFit()
}

func (c *Controller) applyFit() {
	if c.viewW <= 0 || c.viewH <= 0 {
		c.scale = 1
		c.offset = Point{}
		return
	}
	iw, ih := float64(c.imgW), float64(c.imgH)
	c.scale = math.Min(c.viewW/iw, c.viewH/ih)
	c.offset = Point{
		X: (c.viewW - iw*c.scale) / 2,
		Y: (c.viewH - ih*c.scale) / 2,
	}
}

// Resize records a new view size. A fitted view is re-fitted; a user
// transformed view keeps its scale and the image point at the view centre.
func (c *Controller) Resize(w, h float64) {
	oldW, oldH := c.viewW, c.viewH
	c.viewW, c.viewH = w, h

	switch c.state {
	case Fitted:
		c.applyFit()
	case UserTransformed:
		centre := c.ViewToImage(oldW/2, oldH/2)
		c.offset = Point{
			X: w/2 - centre.X*c.scale,
			Y: h/2 - centre.Y*c.scale,
		}
	}
}

// Wheel zooms one step around (x, y): forward (delta > 0) by ZoomInFactor,
// backward by ZoomOutFactor. The image point under the cursor stays put.
func (c *Controller) Wheel(x, y, delta float64) bool {
	if c.state == Empty || delta == 0 {
		return false
	}
	factor := ZoomInFactor
	if delta < 0 {
		factor = ZoomOutFactor
	}
	next := math.Max(MinScale, math.Min(MaxScale, c.scale*factor))
	if next == c.scale {
		return false
	}

	anchor := c.ViewToImage(x, y)
	c.scale = next
	c.offset = Point{X: x - anchor.X*next, Y: y - anchor.Y*next}
	c.state = UserTransformed
	return true
}

// Press starts a drag with the primary button.
func (c *Controller) Press(x, y float64) {
	c.dragging = true
	c.last = Point{X: x, Y: y}
}

// Move pans by the pointer delta while dragging and reports whether the
// transform changed.
func (c *Controller) Move(x, y float64) bool {
	if !c.dragging {
		return false
	}
	dx, dy := x-c.last.X, y-c.last.Y
	c.last = Point{X: x, Y: y}
	if c.state == Empty || (dx == 0 && dy == 0) {
		return false
	}
	c.offset.X += dx
	c.offset.Y += dy
	return true
}

func (c *Controller) Release() {
	c.dragging = false
}

// ViewToImage applies the inverse transform.
func (c *Controller) ViewToImage(x, y float64) Point {
	return Point{
		X: (x - c.offset.X) / c.scale,
		Y: (y - c.offset.Y) / c.scale,
	}
}

// ImageToView applies the forward transform.
func (c *Controller) ImageToView(p Point) Point {
	return Point{
		X: p.X*c.scale + c.offset.X,
		Y: p.Y*c.scale + c.offset.Y,
	}
}

// PixelAt returns the integer image pixel under view position (x, y), or
// false when there is no image or the position falls outside it.
func (c *Controller) PixelAt(x, y float64) (px, py int, ok bool) {
	if c.state == Empty {
		return 0, 0, false
	}
	p := c.ViewToImage(x, y)
	fx, fy := math.Floor(p.X), math.Floor(p.Y)
	if fx < 0 || fy < 0 || fx >= float64(c.imgW) || fy >= float64(c.imgH) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
