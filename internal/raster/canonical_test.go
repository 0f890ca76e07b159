package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPixelBounds(t *testing.T) {
	img, err := Normalize(NewRawSampleBuffer(3, 2, 3, 4, Uint8))
	require.NoError(t, err)

	_, ok := img.Pixel(3, 0)
	assert.False(t, ok)
	_, ok = img.Pixel(0, 2)
	assert.False(t, ok)
	_, ok = img.Pixel(-1, 0)
	assert.False(t, ok)

	px, ok := img.Pixel(2, 1)
	require.True(t, ok)
	assert.Len(t, px, 4)
}

func TestCanonicalDisplayRGBExpandsToOpaqueRGBA(t *testing.T) {
	b := NewRawSampleBuffer(2, 1, 3, 3, Uint8)
	copy(b.Pix, []byte{10, 20, 30, 40, 50, 60})
	img, err := Normalize(b)
	require.NoError(t, err)

	disp, ok := img.Display().(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, []uint8{10, 20, 30, 255, 40, 50, 60, 255}, disp.Pix)
	assert.Equal(t, color.RGBA{R: 40, G: 50, B: 60, A: 255}, img.At(1, 0))
}

func TestCanonicalDisplaySharesGrayPixels(t *testing.T) {
	b := &RawSampleBuffer{Width: 2, Height: 2, Dims: 2, Channels: 1, Kind: Uint8, Stride: 3,
		Pix: []byte{1, 2, 0, 3, 4, 0}}
	img, err := Normalize(b)
	require.NoError(t, err)

	disp, ok := img.Display().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, 3, disp.Stride)
	assert.Equal(t, color.Gray{Y: 4}, disp.At(1, 1))
}

func TestCanonicalDigestIgnoresPadding(t *testing.T) {
	tight := &RawSampleBuffer{Width: 2, Height: 2, Dims: 2, Channels: 1, Kind: Uint8, Stride: 2,
		Pix: []byte{1, 2, 3, 4}}
	padded := &RawSampleBuffer{Width: 2, Height: 2, Dims: 2, Channels: 1, Kind: Uint8, Stride: 4,
		Pix: []byte{1, 2, 9, 9, 3, 4, 7, 7}}
	other := &RawSampleBuffer{Width: 2, Height: 2, Dims: 2, Channels: 1, Kind: Uint8, Stride: 2,
		Pix: []byte{1, 2, 3, 5}}

	a, err := Normalize(tight)
	require.NoError(t, err)
	b, err := Normalize(padded)
	require.NoError(t, err)
	c, err := Normalize(other)
	require.NoError(t, err)

	assert.Equal(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestSwapRedBlue(t *testing.T) {
	b := uint16Buffer(2, 1, 3, 3, []uint16{1, 2, 3, 4, 5, 6})
	b.SwapRedBlue()

	want := uint16Buffer(2, 1, 3, 3, []uint16{3, 2, 1, 6, 5, 4})
	assert.Equal(t, want.Pix, b.Pix)

	gray := NewRawSampleBuffer(2, 1, 2, 1, Uint8)
	copy(gray.Pix, []byte{1, 2})
	gray.SwapRedBlue()
	assert.Equal(t, []byte{1, 2}, gray.Pix)
}
