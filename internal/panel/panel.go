// Package panel is the toolkit-free core of one image display panel: it owns
// the generation counter, the current image and the viewport, and it decides
// which load results are still wanted.
//
// Every exported method must be called from the UI goroutine. Load results
// are handed back to that goroutine through the Dispatcher.
package panel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"twinview/internal/loader"
	"twinview/internal/logger"
	"twinview/internal/raster"
	"twinview/internal/viewport"
)

// Dispatcher runs fn on the UI goroutine. fyne.Do in the application.
type Dispatcher func(fn func())

// Starter launches a load task. *loader.Runner satisfies it.
type Starter interface {
	Start(path string, generation uint64, deliver func(loader.Result)) *loader.Task
}

// PixelInfo describes the image pixel under the pointer. Gray and RGB pixels
// report A as 255; gray pixels repeat the value in R, G and B.
type PixelInfo struct {
	X, Y       int
	R, G, B, A uint8
	Channels   int
}

var Background = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}

type Panel struct {
	name     string
	starter  Starter
	dispatch Dispatcher
	logger   logger.Logger

	generation uint64
	path       string
	image      *raster.CanonicalImage
	errMsg     string
	task       *loader.Task
	view       *viewport.Controller

	// OnPixelInfo receives nil when the pointer leaves the image.
	OnPixelInfo func(*PixelInfo)
	OnLoadError func(message string)
	// OnChange asks the owner to repaint.
	OnChange    func()
}

func New(name string, starter Starter, dispatch Dispatcher, log logger.Logger) *Panel {
	if log == nil {
		log = logger.NewNop()
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Panel{
		name:     name,
		starter:  starter,
		dispatch: dispatch,
		logger:   log,
		view:     viewport.New(),
	}
}

func (p *Panel) Name() string                   { return p.name }
func (p *Panel) Generation() uint64             { return p.generation }
func (p *Panel) Path() string                   { return p.path }
func (p *Panel) Image() *raster.CanonicalImage  { return p.image }
func (p *Panel) ErrorMessage() string           { return p.errMsg }
func (p *Panel) Viewport() *viewport.Controller { return p.view }
func (p *Panel) Loading() bool                  { return p.task != nil }

// Digest of the current image, if any.
func (p *Panel) Digest() (uint64, bool) {
	if p.image == nil {
		return 0, false
	}
	return p.image.Digest(), true
}

// Placeholder is the overlay text for the current state, empty while an
// image is shown.
func (p *Panel) Placeholder() string {
	switch {
	case p.errMsg != "":
		return "Error: " + p.errMsg
	case p.image == nil:
		return "No Image"
	default:
		return ""
	}
}

// Load requests path. An empty path clears the panel immediately. Any
// earlier request becomes stale even if it finishes later.
func (p *Panel) Load(path string) {
	p.generation++
	gen := p.generation

	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}

	if path == "" {
		p.path = ""
		p.image = nil
		p.errMsg = ""
		p.view.Clear()
		p.logger.Debug("Panel", "cleared", map[string]interface{}{
			"panel":      p.name,
			"generation": gen,
		})
		p.pixelInfo(nil)
		p.changed()
		return
	}

	p.path = path
	p.logger.Debug("Panel", "load requested", map[string]interface{}{
		"panel":      p.name,
		"path":       path,
		"generation": gen,
	})
	p.task = p.starter.Start(path, gen, func(res loader.Result) {
		p.dispatch(func() { p.complete(res) })
	})
}

func (p *Panel) complete(res loader.Result) {
	if res.Generation != p.generation {
		p.logger.Debug("Panel", "discarding stale result", map[string]interface{}{
			"panel":      p.name,
			"path":       res.Path,
			"generation": res.Generation,
			"current":    p.generation,
		})
		return
	}
	p.task = nil

	if res.Err != nil {
		p.image = nil
		p.errMsg = res.Err.Error()
		p.view.Clear()
		p.logger.Error("Panel", res.Err, map[string]interface{}{
			"panel": p.name,
			"path":  res.Path,
		})
		if p.OnLoadError != nil {
			p.OnLoadError(p.errMsg)
		}
		p.changed()
		return
	}

	p.image = res.Image
	p.errMsg = ""
	p.view.Fit(res.Image.Width, res.Image.Height)
	p.logger.Debug("Panel", "image loaded", map[string]interface{}{
		"panel":    p.name,
		"path":     res.Path,
		"layout":   res.Image.Layout.String(),
		"width":    res.Image.Width,
		"height":   res.Image.Height,
		"duration": res.Elapsed.String(),
	})
	p.changed()
}

// Close makes every outstanding result stale.
func (p *Panel) Close() {
	p.generation++
	if p.task != nil {
		p.task.Cancel()
		p.task = nil
	}
}

func (p *Panel) SetInterpolation(mode viewport.Interpolation) {
	if p.view.Interpolation() == mode {
		return
	}
	p.view.SetInterpolation(mode)
	p.changed()
}

func (p *Panel) Resize(w, h float64) {
	p.view.Resize(w, h)
	p.changed()
}

// PointerPress starts a pan. Only the primary button should be forwarded.
func (p *Panel) PointerPress(x, y float64) {
	p.view.Press(x, y)
}

func (p *Panel) PointerRelease() {
	p.view.Release()
}

func (p *Panel) PointerMove(x, y float64) {
	if p.view.Move(x, y) {
		p.changed()
	}
	p.inspect(x, y)
}

func (p *Panel) PointerLeave() {
	p.view.Release()
	p.pixelInfo(nil)
}

func (p *Panel) Wheel(x, y, delta float64) {
	if p.view.Wheel(x, y, delta) {
		p.changed()
	}
	p.inspect(x, y)
}

// PixelAt reads the image pixel under view position (x, y).
func (p *Panel) PixelAt(x, y float64) (*PixelInfo, bool) {
	if p.image == nil {
		return nil, false
	}
	px, py, ok := p.view.PixelAt(x, y)
	if !ok {
		return nil, false
	}
	samples, ok := p.image.Pixel(px, py)
	if !ok {
		return nil, false
	}

	info := &PixelInfo{X: px, Y: py, A: 0xff, Channels: len(samples)}
	switch len(samples) {
	case 1:
		info.R, info.G, info.B = samples[0], samples[0], samples[0]
	case 3:
		info.R, info.G, info.B = samples[0], samples[1], samples[2]
	case 4:
		info.R, info.G, info.B, info.A = samples[0], samples[1], samples[2], samples[3]
	}
	return info, true
}

func (p *Panel) inspect(x, y float64) {
	info, _ := p.PixelAt(x, y)
	p.pixelInfo(info)
}

func (p *Panel) pixelInfo(info *PixelInfo) {
	if p.OnPixelInfo != nil {
		p.OnPixelInfo(info)
	}
}

func (p *Panel) changed() {
	if p.OnChange != nil {
		p.OnChange()
	}
}

// Render draws the current view into a w x h frame. When the frame is larger
// than the logical view size (HiDPI) the transform is scaled to match.
func (p *Panel) Render(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if p.image == nil || w <= 0 || h <= 0 {
		return dst
	}

	sx, sy := 1.0, 1.0
	if vw, vh := p.view.ViewSize(); vw > 0 && vh > 0 {
		sx, sy = float64(w)/vw, float64(h)/vh
	}
	scale := p.view.Scale()
	off := p.view.Offset()
	m := f64.Aff3{
		scale * sx, 0, off.X * sx,
		0, scale * sy, off.Y * sy,
	}

	src := p.image.Display()
	interpolator(p.view.Interpolation()).Transform(dst, m, src, src.Bounds(), draw.Over, nil)
	return dst
}

func interpolator(mode viewport.Interpolation) draw.Transformer {
	if mode == viewport.Nearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}
