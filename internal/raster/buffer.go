// Package raster holds decoded pixel buffers and the normalizer that turns
// them into displayable 8-bit images.
package raster

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedShape = errors.New("unsupported image shape")
	ErrTruncated        = errors.New("truncated sample buffer")
)

// SampleKind is the numeric type of one channel sample.
type SampleKind int

const (
	Uint8 SampleKind = iota
	Uint16
	Float32
	Float64
)

func (k SampleKind) Size() int {
	switch k {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

func (k SampleKind) IsFloat() bool {
	return k == Float32 || k == Float64
}

func (k SampleKind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("SampleKind(%d)", int(k))
	}
}

// RawSampleBuffer is decoder output before normalization. Samples are
// interleaved per pixel, little-endian, rows Stride bytes apart.
type RawSampleBuffer struct {
	Width    int
	Height   int
	Dims     int
	Channels int
	Kind     SampleKind
	Stride   int
	Pix      []byte
}

// NewRawSampleBuffer allocates a tightly packed buffer.
func NewRawSampleBuffer(width, height, dims, channels int, kind SampleKind) *RawSampleBuffer {
	stride := width * channels * kind.Size()
	return &RawSampleBuffer{
		Width:    width,
		Height:   height,
		Dims:     dims,
		Channels: channels,
		Kind:     kind,
		Stride:   stride,
		Pix:      make([]byte, stride*height),
	}
}

// RowBytes is the number of meaningful bytes in one row.
func (b *RawSampleBuffer) RowBytes() int {
	return b.Width * b.Channels * b.Kind.Size()
}

// Layout maps the buffer shape onto a canonical layout.
func (b *RawSampleBuffer) Layout() (Layout, error) {
	switch {
	case b.Dims == 2 && b.Channels == 1:
		return Gray, nil
	case b.Dims == 3 && b.Channels == 3:
		return RGB, nil
	case b.Dims == 3 && b.Channels == 4:
		return RGBA, nil
	default:
		return 0, fmt.Errorf("%w: %d dimensions with %d channels", ErrUnsupportedShape, b.Dims, b.Channels)
	}
}

// Validate checks shape, sample kind and that Pix covers every row.
func (b *RawSampleBuffer) Validate() error {
	if _, err := b.Layout(); err != nil {
		return err
	}
	if b.Kind.Size() == 0 {
		return fmt.Errorf("%w: sample kind %s", ErrUnsupportedShape, b.Kind)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrTruncated, b.Width, b.Height)
	}
	row := b.RowBytes()
	if b.Stride < row {
		return fmt.Errorf("%w: stride %d shorter than row %d", ErrTruncated, b.Stride, row)
	}
	if need := b.Stride*(b.Height-1) + row; len(b.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(b.Pix), need)
	}
	return nil
}

// SwapRedBlue reorders BGR(A) samples to RGB(A) in place. Used by codecs
// that deliver blue first; it is a no-op for grayscale buffers.
func (b *RawSampleBuffer) SwapRedBlue() {
	if b.Channels < 3 {
		return
	}
	size := b.Kind.Size()
	pixel := b.Channels * size
	for y := 0; y < b.Height; y++ {
		row := b.Pix[y*b.Stride : y*b.Stride+b.RowBytes()]
		for x := 0; x+pixel <= len(row); x += pixel {
			for i := 0; i < size; i++ {
				row[x+i], row[x+2*size+i] = row[x+2*size+i], row[x+i]
			}
		}
	}
}
