package decode

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"twinview/internal/raster"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// StandardCodec decodes JPEG, PNG, BMP and WebP files. JPEG EXIF
// orientation is applied so both panels show photos upright.
type StandardCodec struct{}

func (StandardCodec) Decode(ctx context.Context, path string) (*raster.RawSampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromImage(img)
}

// FromImage converts a decoded image into a raw sample buffer. Grayscale
// becomes a 2-D buffer, opaque color images RGB and the rest
// non-premultiplied RGBA. 16-bit stdlib models keep their full depth.
func FromImage(img image.Image) (*raster.RawSampleBuffer, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", w, h)
	}

	switch src := img.(type) {
	case *image.Gray:
		buf := raster.NewRawSampleBuffer(w, h, 2, 1, raster.Uint8)
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[y*buf.Stride:], src.Pix[i:i+w])
		}
		return buf, nil
	case *image.Gray16:
		buf := raster.NewRawSampleBuffer(w, h, 2, 1, raster.Uint16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				binary.LittleEndian.PutUint16(buf.Pix[y*buf.Stride+2*x:], uint16(src.Pix[i])<<8|uint16(src.Pix[i+1]))
			}
		}
		return buf, nil
	case *image.RGBA64, *image.NRGBA64:
		return fromWide(img, opaque(img)), nil
	}

	channels := 4
	if opaque(img) {
		channels = 3
	}
	buf := raster.NewRawSampleBuffer(w, h, 3, channels, raster.Uint8)
	if src, ok := img.(*image.NRGBA); ok && channels == 4 {
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[y*buf.Stride:], src.Pix[i:i+4*w])
		}
		return buf, nil
	}
	for y := 0; y < h; y++ {
		row := buf.Pix[y*buf.Stride:]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := x * channels
			row[o], row[o+1], row[o+2] = c.R, c.G, c.B
			if channels == 4 {
				row[o+3] = c.A
			}
		}
	}
	return buf, nil
}

func fromWide(img image.Image, isOpaque bool) *raster.RawSampleBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	channels := 4
	if isOpaque {
		channels = 3
	}
	buf := raster.NewRawSampleBuffer(w, h, 3, channels, raster.Uint16)
	for y := 0; y < h; y++ {
		row := buf.Pix[y*buf.Stride:]
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			o := 2 * x * channels
			binary.LittleEndian.PutUint16(row[o:], c.R)
			binary.LittleEndian.PutUint16(row[o+2:], c.G)
			binary.LittleEndian.PutUint16(row[o+4:], c.B)
			if channels == 4 {
				binary.LittleEndian.PutUint16(row[o+6:], c.A)
			}
		}
	}
	return buf
}

func opaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}
