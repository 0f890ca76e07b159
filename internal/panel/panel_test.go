package panel

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twinview/internal/decode"
	"twinview/internal/loader"
	"twinview/internal/logger"
	"twinview/internal/raster"
	"twinview/internal/viewport"
)

type stubResult struct {
	img *raster.CanonicalImage
	err error
}

// stubSource blocks each path until its gate is closed. Cancellation is
// ignored so stale tasks still produce real images.
type stubSource struct {
	gates   map[string]chan struct{}
	results map[string]stubResult
}

func newStubSource() *stubSource {
	return &stubSource{
		gates:   make(map[string]chan struct{}),
		results: make(map[string]stubResult),
	}
}

func (s *stubSource) add(path string, img *raster.CanonicalImage, err error) {
	s.gates[path] = make(chan struct{})
	s.results[path] = stubResult{img: img, err: err}
}

func (s *stubSource) release(path string) {
	close(s.gates[path])
}

func (s *stubSource) Load(_ context.Context, path string) (*raster.CanonicalImage, error) {
	<-s.gates[path]
	r := s.results[path]
	return r.img, r.err
}

type queue chan func()

func (q queue) dispatch(fn func()) { q <- fn }

// next runs the next dispatched completion on the test goroutine.
func (q queue) next(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("no completion dispatched")
	}
}

func (q queue) empty(t *testing.T) {
	t.Helper()
	select {
	case <-q:
		t.Fatal("unexpected completion dispatched")
	case <-time.After(20 * time.Millisecond):
	}
}

func grayImage(w, h int, v uint8) *raster.CanonicalImage {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = v
	}
	return &raster.CanonicalImage{Layout: raster.Gray, Width: w, Height: h, Stride: w, Pix: pix}
}

func newPanel(t *testing.T, src *stubSource) (*Panel, queue) {
	t.Helper()
	runner := loader.NewRunner(src, logger.NewNop())
	t.Cleanup(runner.Shutdown)
	q := make(queue, 16)
	p := New("left", runner, q.dispatch, logger.NewNop())
	p.Resize(800, 800)
	return p, q
}

func TestLatestRequestWinsRegardlessOfArrivalOrder(t *testing.T) {
	src := newStubSource()
	a, b, c := grayImage(10, 10, 1), grayImage(20, 20, 2), grayImage(1000, 500, 3)
	src.add("a.png", a, nil)
	src.add("b.png", b, nil)
	src.add("c.png", c, nil)

	p, q := newPanel(t, src)
	changes := 0
	p.OnChange = func() { changes++ }

	p.Load("a.png")
	p.Load("b.png")
	p.Load("c.png")
	require.Equal(t, uint64(3), p.Generation())
	assert.True(t, p.Loading())

	src.release("c.png")
	q.next(t)
	require.Same(t, c, p.Image())
	assert.False(t, p.Loading())
	assert.InDelta(t, 0.8, p.Viewport().Scale(), 1e-12)
	assert.Equal(t, 1, changes)

	src.release("a.png")
	q.next(t)
	src.release("b.png")
	q.next(t)

	assert.Same(t, c, p.Image(), "stale completions must not replace the image")
	assert.Equal(t, "c.png", p.Path())
	assert.Equal(t, 1, changes)
	assert.Empty(t, p.ErrorMessage())
}

func TestStaleResultBeforeCurrentIsDiscarded(t *testing.T) {
	src := newStubSource()
	a, b := grayImage(4, 4, 1), grayImage(8, 8, 2)
	src.add("a.png", a, nil)
	src.add("b.png", b, nil)

	p, q := newPanel(t, src)
	p.Load("a.png")
	p.Load("b.png")

	src.release("a.png")
	q.next(t)
	assert.Nil(t, p.Image())
	assert.True(t, p.Loading())

	src.release("b.png")
	q.next(t)
	assert.Same(t, b, p.Image())
}

func TestEmptyPathClearsSynchronously(t *testing.T) {
	src := newStubSource()
	a := grayImage(4, 4, 1)
	src.add("a.png", a, nil)
	src.add("slow.png", grayImage(2, 2, 9), nil)

	p, q := newPanel(t, src)
	p.Load("a.png")
	src.release("a.png")
	q.next(t)
	require.Same(t, a, p.Image())

	p.Load("slow.png")
	var infos []*PixelInfo
	p.OnPixelInfo = func(info *PixelInfo) { infos = append(infos, info) }

	p.Load("")
	assert.Nil(t, p.Image())
	assert.Empty(t, p.Path())
	assert.Empty(t, p.ErrorMessage())
	assert.False(t, p.Loading())
	assert.Equal(t, viewport.Empty, p.Viewport().State())
	assert.Equal(t, "No Image", p.Placeholder())
	assert.Equal(t, uint64(3), p.Generation())
	require.Len(t, infos, 1)
	assert.Nil(t, infos[0])

	// The superseded slow load still completes but is ignored.
	src.release("slow.png")
	q.next(t)
	assert.Nil(t, p.Image())
	q.empty(t)
}

func TestLoadErrorSurfacesOnlyWhenCurrent(t *testing.T) {
	src := newStubSource()
	bad := &decode.Error{Kind: decode.UnreadableFile, Path: "bad.png", Err: errors.New("corrupt")}
	src.add("bad.png", nil, bad)
	src.add("stale-bad.png", nil, bad)
	good := grayImage(2, 2, 5)
	src.add("good.png", good, nil)

	p, q := newPanel(t, src)
	var reported []string
	p.OnLoadError = func(msg string) { reported = append(reported, msg) }

	p.Load("good.png")
	src.release("good.png")
	q.next(t)
	require.Same(t, good, p.Image())

	p.Load("stale-bad.png")
	p.Load("bad.png")
	src.release("stale-bad.png")
	q.next(t)
	assert.Empty(t, reported)
	assert.Same(t, good, p.Image(), "previous image stays until the current load settles")

	src.release("bad.png")
	q.next(t)
	require.Len(t, reported, 1)
	assert.Contains(t, reported[0], "corrupt")
	assert.Nil(t, p.Image())
	assert.Equal(t, viewport.Empty, p.Viewport().State())
	assert.Equal(t, "Error: "+reported[0], p.Placeholder())
}

func TestSuccessfulLoadClearsError(t *testing.T) {
	src := newStubSource()
	src.add("bad.png", nil, errors.New("nope"))
	img := grayImage(3, 3, 7)
	src.add("ok.png", img, nil)

	p, q := newPanel(t, src)
	p.Load("bad.png")
	src.release("bad.png")
	q.next(t)
	require.NotEmpty(t, p.ErrorMessage())

	p.Load("ok.png")
	src.release("ok.png")
	q.next(t)
	assert.Empty(t, p.ErrorMessage())
	assert.Empty(t, p.Placeholder())
}

func TestCloseDiscardsOutstandingResult(t *testing.T) {
	src := newStubSource()
	src.add("a.png", grayImage(2, 2, 1), nil)

	p, q := newPanel(t, src)
	p.Load("a.png")
	p.Close()
	src.release("a.png")
	q.next(t)
	assert.Nil(t, p.Image())
}

func TestSetInterpolationDoesNotReload(t *testing.T) {
	src := newStubSource()
	img := grayImage(2, 2, 1)
	src.add("a.png", img, nil)

	p, q := newPanel(t, src)
	p.Load("a.png")
	src.release("a.png")
	q.next(t)

	changes := 0
	p.OnChange = func() { changes++ }
	gen := p.Generation()

	p.SetInterpolation(viewport.Nearest)
	p.SetInterpolation(viewport.Nearest)
	assert.Equal(t, gen, p.Generation())
	assert.Same(t, img, p.Image())
	assert.Equal(t, viewport.Nearest, p.Viewport().Interpolation())
	assert.Equal(t, 1, changes)
	q.empty(t)
}

func loaded(t *testing.T, img *raster.CanonicalImage) *Panel {
	t.Helper()
	src := newStubSource()
	src.add("img", img, nil)
	p, q := newPanel(t, src)
	p.Load("img")
	src.release("img")
	q.next(t)
	require.Same(t, img, p.Image())
	return p
}

func TestPixelInfoFollowsPointer(t *testing.T) {
	img := &raster.CanonicalImage{
		Layout: raster.RGB, Width: 2, Height: 1, Stride: 6,
		Pix: []byte{10, 20, 30, 40, 50, 60},
	}
	p := loaded(t, img)

	var last *PixelInfo
	calls := 0
	p.OnPixelInfo = func(info *PixelInfo) { last = info; calls++ }

	// 2x1 in 800x800: scale 400, image spans y in [200, 600).
	p.PointerMove(600, 400)
	require.NotNil(t, last)
	assert.Equal(t, PixelInfo{X: 1, Y: 0, R: 40, G: 50, B: 60, A: 255, Channels: 3}, *last)

	p.PointerMove(600, 100)
	assert.Nil(t, last)

	p.PointerMove(10, 300)
	require.NotNil(t, last)
	p.PointerLeave()
	assert.Nil(t, last)
	assert.Equal(t, 4, calls)
}

func TestGrayPixelInfo(t *testing.T) {
	p := loaded(t, grayImage(4, 4, 77))
	info, ok := p.PixelAt(400, 400)
	require.True(t, ok)
	assert.Equal(t, uint8(77), info.R)
	assert.Equal(t, uint8(77), info.B)
	assert.Equal(t, uint8(255), info.A)
	assert.Equal(t, 1, info.Channels)
}

func TestWheelAndDragRepaint(t *testing.T) {
	p := loaded(t, grayImage(100, 100, 1))
	changes := 0
	p.OnChange = func() { changes++ }

	p.Wheel(400, 400, 1)
	assert.Equal(t, 1, changes)
	assert.Equal(t, viewport.UserTransformed, p.Viewport().State())

	p.PointerPress(400, 400)
	p.PointerMove(410, 400)
	p.PointerRelease()
	p.PointerMove(420, 400)
	assert.Equal(t, 2, changes)
}

func TestRenderDrawsImageInsideLetterbox(t *testing.T) {
	img := grayImage(2, 1, 200)
	src := newStubSource()
	src.add("img", img, nil)
	p, q := newPanel(t, src)
	p.Resize(4, 4)
	p.SetInterpolation(viewport.Nearest)
	p.Load("img")
	src.release("img")
	q.next(t)

	// 2x1 fitted into 4x4: scale 2, rows 1 and 2 carry the image.
	out := p.Render(4, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	r, _, _, _ := out.At(1, 1).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
	r, _, _, _ = out.At(1, 0).RGBA()
	assert.Equal(t, uint32(Background.R)*0x101, r)

	// A 2x HiDPI frame scales the same view.
	out = p.Render(8, 8)
	r, _, _, _ = out.At(3, 3).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
	r, _, _, _ = out.At(3, 1).RGBA()
	assert.Equal(t, uint32(Background.R)*0x101, r)
}

func TestRenderEmptyIsBackground(t *testing.T) {
	p, _ := newPanel(t, newStubSource())
	out := p.Render(3, 3)
	r, g, b, a := out.At(2, 2).RGBA()
	assert.Equal(t, uint32(Background.R)*0x101, r)
	assert.Equal(t, uint32(Background.G)*0x101, g)
	assert.Equal(t, uint32(Background.B)*0x101, b)
	assert.Equal(t, uint32(0xffff), a)
}
