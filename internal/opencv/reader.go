// Package opencv reads scientific TIFF files through OpenCV, which handles
// 16-bit and floating point samples the Go image codecs cannot.
package opencv

import (
	"context"
	"fmt"
	"time"

	"twinview/internal/logger"
	"twinview/internal/raster"

	"gocv.io/x/gocv"
)

// Reader implements decode.Codec for the scientific family.
type Reader struct {
	logger logger.Logger
}

func NewReader(log logger.Logger) *Reader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reader{logger: log}
}

// Decode reads path unchanged (no depth or channel conversion) and returns
// its samples in RGB(A) order. Mat data is host-endian, which is little-endian
// on every platform OpenCV ships for.
func (r *Reader) Decode(ctx context.Context, path string) (*raster.RawSampleBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()

	if err := validateMat(&mat, path); err != nil {
		return nil, err
	}

	kind, err := sampleKind(mat.Type())
	if err != nil {
		return nil, err
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	rows, cols, channels := src.Rows(), src.Cols(), src.Channels()
	data := src.ToBytes()
	if len(data) == 0 || len(data)%rows != 0 {
		return nil, fmt.Errorf("unexpected Mat data length %d for %d rows", len(data), rows)
	}

	dims := 3
	if channels == 1 {
		dims = 2
	}
	buf := &raster.RawSampleBuffer{
		Width:    cols,
		Height:   rows,
		Dims:     dims,
		Channels: channels,
		Kind:     kind,
		Stride:   len(data) / rows,
		Pix:      data,
	}
	buf.SwapRedBlue()

	r.logger.Debug("OpenCVReader", "TIFF read", map[string]interface{}{
		"path":     path,
		"width":    cols,
		"height":   rows,
		"channels": channels,
		"kind":     kind.String(),
		"elapsed":  time.Since(start).String(),
	})
	return buf, nil
}
