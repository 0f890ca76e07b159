// Package decode turns image files into normalized canonical images.
package decode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twinview/internal/logger"
	"twinview/internal/raster"
)

// Codec decodes one file family into a raw sample buffer.
type Codec interface {
	Decode(ctx context.Context, path string) (*raster.RawSampleBuffer, error)
}

// CodecFunc adapts a function to Codec.
type CodecFunc func(ctx context.Context, path string) (*raster.RawSampleBuffer, error)

func (f CodecFunc) Decode(ctx context.Context, path string) (*raster.RawSampleBuffer, error) {
	return f(ctx, path)
}

type Decoder struct {
	codecs     map[Format]Codec
	normalizer *raster.Normalizer
	logger     logger.Logger
}

type Option func(*Decoder)

// WithCodec registers c for format f, replacing any previous codec.
func WithCodec(f Format, c Codec) Option {
	return func(d *Decoder) { d.codecs[f] = c }
}

func WithNormalizer(n *raster.Normalizer) Option {
	return func(d *Decoder) { d.normalizer = n }
}

func WithLogger(l logger.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// New returns a decoder with the standard codec registered. The scientific
// family has no pure-Go codec; callers register one with WithCodec.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		codecs:     map[Format]Codec{Standard: StandardCodec{}},
		normalizer: raster.NewNormalizer(0),
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode runs the codec for path and validates the resulting shape.
func (d *Decoder) Decode(ctx context.Context, path string) (*raster.RawSampleBuffer, error) {
	format := FormatForPath(path)
	codec, ok := d.codecs[format]
	if !ok {
		return nil, &Error{Kind: UnreadableFile, Path: path, Err: fmt.Errorf("no codec for %s format", format)}
	}

	start := time.Now()
	buf, err := codec.Decode(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, classify(path, err)
	}
	if buf == nil {
		return nil, &Error{Kind: UnreadableFile, Path: path, Err: errors.New("codec returned no image")}
	}
	if err := buf.Validate(); err != nil {
		return nil, classify(path, err)
	}

	d.logger.Debug("Decoder", "image decoded", map[string]interface{}{
		"path":     path,
		"format":   format.String(),
		"width":    buf.Width,
		"height":   buf.Height,
		"channels": buf.Channels,
		"kind":     buf.Kind.String(),
		"elapsed":  time.Since(start).String(),
	})
	return buf, nil
}

// Load decodes and normalizes path.
func (d *Decoder) Load(ctx context.Context, path string) (*raster.CanonicalImage, error) {
	buf, err := d.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := d.normalizer.Normalize(buf)
	if err != nil {
		return nil, classify(path, err)
	}
	return img, nil
}

func classify(path string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	kind := UnreadableFile
	if errors.Is(err, raster.ErrUnsupportedShape) {
		kind = UnsupportedShape
	}
	return &Error{Kind: kind, Path: path, Err: err}
}
