package raster

import (
	"encoding/binary"
	"image"
	"image/color"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Layout is one of the three fixed canonical pixel shapes.
type Layout int

const (
	Gray Layout = iota
	RGB
	RGBA
)

func (l Layout) Channels() int {
	switch l {
	case RGB:
		return 3
	case RGBA:
		return 4
	default:
		return 1
	}
}

func (l Layout) String() string {
	switch l {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// CanonicalImage is an immutable 8-bit-per-channel image. Rows are Stride
// bytes apart; bytes past Width*channels in a row are padding.
type CanonicalImage struct {
	Layout Layout
	Width  int
	Height int
	Stride int
	Pix    []uint8

	workers int

	digestOnce sync.Once
	digest     uint64

	displayOnce sync.Once
	display     image.Image
}

func (c *CanonicalImage) offset(x, y int) int {
	return y*c.Stride + x*c.Layout.Channels()
}

// Pixel returns a copy of the channel values at (x, y) read straight from
// the source buffer.
func (c *CanonicalImage) Pixel(x, y int) ([]uint8, bool) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return nil, false
	}
	n := c.Layout.Channels()
	i := c.offset(x, y)
	out := make([]uint8, n)
	copy(out, c.Pix[i:i+n])
	return out, true
}

func (c *CanonicalImage) ColorModel() color.Model {
	switch c.Layout {
	case Gray:
		return color.GrayModel
	case RGB:
		return color.RGBAModel
	default:
		return color.NRGBAModel
	}
}

func (c *CanonicalImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

func (c *CanonicalImage) At(x, y int) color.Color {
	px, ok := c.Pixel(x, y)
	if !ok {
		return color.NRGBA{}
	}
	switch c.Layout {
	case Gray:
		return color.Gray{Y: px[0]}
	case RGB:
		return color.RGBA{R: px[0], G: px[1], B: px[2], A: 0xff}
	default:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	}
}

// Digest hashes layout, size and visible pixels; padding is ignored so two
// images with equal content but different strides compare equal.
func (c *CanonicalImage) Digest() uint64 {
	c.digestOnce.Do(func() {
		d := xxhash.New()
		var hdr [12]byte
		binary.LittleEndian.PutUint32(hdr[0:], uint32(c.Layout))
		binary.LittleEndian.PutUint32(hdr[4:], uint32(c.Width))
		binary.LittleEndian.PutUint32(hdr[8:], uint32(c.Height))
		_, _ = d.Write(hdr[:])
		row := c.Width * c.Layout.Channels()
		for y := 0; y < c.Height; y++ {
			_, _ = d.Write(c.Pix[y*c.Stride : y*c.Stride+row])
		}
		c.digest = d.Sum64()
	})
	return c.digest
}

// Display returns an image.Image backed by a stdlib pixel type so draw
// routines hit their fast paths. Gray and RGBA share Pix; RGB is expanded
// once into an opaque RGBA copy.
func (c *CanonicalImage) Display() image.Image {
	c.displayOnce.Do(func() {
		rect := c.Bounds()
		switch c.Layout {
		case Gray:
			c.display = &image.Gray{Pix: c.Pix, Stride: c.Stride, Rect: rect}
		case RGBA:
			c.display = &image.NRGBA{Pix: c.Pix, Stride: c.Stride, Rect: rect}
		default:
			dst := image.NewRGBA(rect)
			forEachRowBand(c.Height, c.workers, func(y0, y1 int) {
				for y := y0; y < y1; y++ {
					src := c.Pix[y*c.Stride:]
					out := dst.Pix[y*dst.Stride:]
					for x := 0; x < c.Width; x++ {
						out[4*x] = src[3*x]
						out[4*x+1] = src[3*x+1]
						out[4*x+2] = src[3*x+2]
						out[4*x+3] = 0xff
					}
				}
			})
			c.display = dst
		}
	})
	return c.display
}
