package raster

import (
	"encoding/binary"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows keeps tiny images on a single goroutine.
const minBandRows = 64

// Normalizer converts RawSampleBuffers into CanonicalImages. Row bands are
// processed concurrently; the output never depends on the worker count.
type Normalizer struct {
	workers int
}

func NewNormalizer(workers int) *Normalizer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Normalizer{workers: workers}
}

var defaultNormalizer = NewNormalizer(0)

// Normalize uses a normalizer sized to GOMAXPROCS.
func Normalize(buf *RawSampleBuffer) (*CanonicalImage, error) {
	return defaultNormalizer.Normalize(buf)
}

// Normalize maps every supported sample kind onto 8 bits:
// uint8 is copied verbatim, uint16 keeps the high byte, and floats are
// rescaled linearly between the global finite min and max.
func (n *Normalizer) Normalize(buf *RawSampleBuffer) (*CanonicalImage, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	layout, _ := buf.Layout()

	out := &CanonicalImage{
		Layout:  layout,
		Width:   buf.Width,
		Height:  buf.Height,
		workers: n.workers,
	}

	if buf.Kind == Uint8 {
		out.Stride = buf.Stride
		out.Pix = make([]uint8, len(buf.Pix))
		copy(out.Pix, buf.Pix)
		return out, nil
	}

	size := buf.Kind.Size()
	samples := buf.Width * buf.Channels
	pad := buf.Stride - samples*size
	out.Stride = samples + (pad+size-1)/size
	out.Pix = make([]uint8, out.Stride*buf.Height)

	switch buf.Kind {
	case Uint16:
		forEachRowBand(buf.Height, n.workers, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				src := buf.Pix[y*buf.Stride:]
				dst := out.Pix[y*out.Stride:]
				for i := 0; i < samples; i++ {
					dst[i] = uint8(binary.LittleEndian.Uint16(src[2*i:]) / 256)
				}
			}
		})
	case Float32, Float64:
		lo, hi, ok := n.finiteRange(buf)
		if !ok || lo == hi {
			return out, nil
		}
		span := hi - lo
		forEachRowBand(buf.Height, n.workers, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				src := buf.Pix[y*buf.Stride:]
				dst := out.Pix[y*out.Stride:]
				for i := 0; i < samples; i++ {
					dst[i] = rescale(floatSample(buf.Kind, src, i), lo, span)
				}
			}
		})
	}
	return out, nil
}

// finiteRange is a NaN-aware min/max; infinities are skipped as well.
func (n *Normalizer) finiteRange(buf *RawSampleBuffer) (lo, hi float64, ok bool) {
	type bandRange struct {
		lo, hi float64
		ok     bool
	}
	band := bandHeight(buf.Height, n.workers)
	bands := make([]bandRange, (buf.Height+band-1)/band)
	samples := buf.Width * buf.Channels

	forEachRowBand(buf.Height, n.workers, func(y0, y1 int) {
		r := bandRange{lo: math.Inf(1), hi: math.Inf(-1)}
		for y := y0; y < y1; y++ {
			src := buf.Pix[y*buf.Stride:]
			for i := 0; i < samples; i++ {
				v := floatSample(buf.Kind, src, i)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				r.ok = true
				if v < r.lo {
					r.lo = v
				}
				if v > r.hi {
					r.hi = v
				}
			}
		}
		bands[y0/band] = r
	})

	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range bands {
		if !r.ok {
			continue
		}
		ok = true
		lo = math.Min(lo, r.lo)
		hi = math.Max(hi, r.hi)
	}
	return lo, hi, ok
}

func floatSample(kind SampleKind, row []byte, i int) float64 {
	if kind == Float32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(row[4*i:])))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(row[8*i:]))
}

func rescale(v, lo, span float64) uint8 {
	switch {
	case math.IsNaN(v), math.IsInf(v, -1):
		return 0
	case math.IsInf(v, 1):
		return 255
	}
	s := (v - lo) / span * 255
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

func bandHeight(height, workers int) int {
	if workers <= 1 || height < 2*minBandRows {
		return max(height, 1)
	}
	return max((height+workers-1)/workers, minBandRows)
}

// forEachRowBand calls fn for disjoint [y0, y1) bands covering the height,
// at most workers at a time, and waits for all of them.
func forEachRowBand(height, workers int, fn func(y0, y1 int)) {
	band := bandHeight(height, workers)
	if band >= height {
		fn(0, height)
		return
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y0 := y0
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
