package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twinview/internal/raster"
)

func TestDescribe(t *testing.T) {
	buf := raster.NewRawSampleBuffer(2, 1, 3, 3, raster.Uint8)
	copy(buf.Pix, []byte{1, 2, 3, 4, 5, 6})
	img, err := raster.Normalize(buf)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, describe(&out, "/tmp/x.tif", buf, img, 1, 0))

	text := out.String()
	assert.Contains(t, text, "format:   scientific")
	assert.Contains(t, text, "size:     2x1")
	assert.Contains(t, text, "samples:  3 x uint8")
	assert.Contains(t, text, "layout:   rgb")
	assert.Contains(t, text, "pixel:    (1, 0) [4 5 6]")
}

func TestDescribePixelOutOfRange(t *testing.T) {
	buf := raster.NewRawSampleBuffer(1, 1, 2, 1, raster.Uint8)
	img, err := raster.Normalize(buf)
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Error(t, describe(&out, "/tmp/x.png", buf, img, 5, 5))

	out.Reset()
	require.NoError(t, describe(&out, "/tmp/x.png", buf, img, -1, -1))
	assert.NotContains(t, out.String(), "pixel:")
}
