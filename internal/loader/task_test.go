package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"twinview/internal/decode"
	"twinview/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(ctx context.Context, path string) (*raster.CanonicalImage, error)

func (f sourceFunc) Load(ctx context.Context, path string) (*raster.CanonicalImage, error) {
	return f(ctx, path)
}

func grayImage(t *testing.T) *raster.CanonicalImage {
	t.Helper()
	img, err := raster.Normalize(raster.NewRawSampleBuffer(1, 1, 2, 1, raster.Uint8))
	require.NoError(t, err)
	return img
}

func TestRunnerDeliversTaggedResult(t *testing.T) {
	img := grayImage(t)
	r := NewRunner(sourceFunc(func(context.Context, string) (*raster.CanonicalImage, error) {
		return img, nil
	}), nil)
	defer r.Shutdown()

	results := make(chan Result, 1)
	task := r.Start("/a.png", 7, func(res Result) { results <- res })

	select {
	case res := <-results:
		assert.Equal(t, uint64(7), res.Generation)
		assert.Equal(t, "/a.png", res.Path)
		assert.Same(t, img, res.Image)
		assert.NoError(t, res.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}
	<-task.Done()
}

func TestRunnerDoesNotBlockOnEarlierTasks(t *testing.T) {
	release := make(chan struct{})
	r := NewRunner(sourceFunc(func(ctx context.Context, path string) (*raster.CanonicalImage, error) {
		if path == "/slow.tif" {
			<-release
		}
		return nil, errors.New(path)
	}), nil)

	results := make(chan Result, 2)
	r.Start("/slow.tif", 1, func(res Result) { results <- res })
	r.Start("/fast.png", 2, func(res Result) { results <- res })

	first := <-results
	assert.Equal(t, uint64(2), first.Generation)

	close(release)
	second := <-results
	assert.Equal(t, uint64(1), second.Generation)
	r.Shutdown()
}

func TestTaskCancelStillDelivers(t *testing.T) {
	r := NewRunner(sourceFunc(func(ctx context.Context, _ string) (*raster.CanonicalImage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), nil)

	results := make(chan Result, 1)
	task := r.Start("/big.tif", 3, func(res Result) { results <- res })
	task.Cancel()

	res := <-results
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, uint64(3), res.Generation)
	r.Shutdown()
}

func TestRunnerRecoversPanics(t *testing.T) {
	r := NewRunner(sourceFunc(func(context.Context, string) (*raster.CanonicalImage, error) {
		panic("corrupt strip offsets")
	}), nil)

	results := make(chan Result, 1)
	r.Start("/bad.tif", 4, func(res Result) { results <- res })

	res := <-results
	assert.Nil(t, res.Image)
	assert.True(t, errors.Is(res.Err, &decode.Error{Kind: decode.UnreadableFile}))
	assert.Contains(t, res.Err.Error(), "corrupt strip offsets")
	r.Shutdown()
}

func TestRunnerShutdownCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	r := NewRunner(sourceFunc(func(ctx context.Context, _ string) (*raster.CanonicalImage, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}), nil)

	delivered := make(chan Result, 1)
	r.Start("/hung.tif", 1, func(res Result) { delivered <- res })
	<-started

	r.Shutdown()
	res := <-delivered
	assert.ErrorIs(t, res.Err, context.Canceled)
}
