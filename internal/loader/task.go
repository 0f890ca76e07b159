// Package loader runs decode work off the UI goroutine. Every task carries
// the generation it was issued under; deciding whether a result is still
// wanted is left to the receiver.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"twinview/internal/decode"
	"twinview/internal/logger"
	"twinview/internal/raster"
)

// Source produces a canonical image for a path. *decode.Decoder satisfies it.
type Source interface {
	Load(ctx context.Context, path string) (*raster.CanonicalImage, error)
}

// Result is the one-shot message a task posts when it finishes.
type Result struct {
	Generation uint64
	Path       string
	Image      *raster.CanonicalImage
	Err        error
	Elapsed    time.Duration
}

// Task is one in-flight load.
type Task struct {
	Path       string
	Generation uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel asks the decoder to stop early. The result is still delivered.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed after the result has been delivered.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Runner spawns tasks and tracks them so shutdown can wait for stragglers.
type Runner struct {
	source Source
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(source Source, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		source: source,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches a goroutine that loads path and calls deliver exactly once
// with the outcome. Start never blocks on earlier tasks.
func (r *Runner) Start(path string, generation uint64, deliver func(Result)) *Task {
	ctx, cancel := context.WithCancel(r.ctx)
	task := &Task{
		Path:       path,
		Generation: generation,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)
		defer cancel()

		deliver(r.run(ctx, path, generation))
	}()
	return task
}

func (r *Runner) run(ctx context.Context, path string, generation uint64) (res Result) {
	start := time.Now()
	res = Result{Generation: generation, Path: path}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Warning("Loader", "decoder panicked", map[string]interface{}{
				"path":  path,
				"panic": fmt.Sprint(p),
			})
			res.Image = nil
			res.Err = &decode.Error{Kind: decode.UnreadableFile, Path: path, Err: fmt.Errorf("decoder panic: %v", p)}
		}
		res.Elapsed = time.Since(start)
	}()

	res.Image, res.Err = r.source.Load(ctx, path)
	return res
}

// Shutdown cancels every in-flight task and waits for them to deliver.
func (r *Runner) Shutdown() {
	r.cancel()
	r.wg.Wait()
	r.logger.Debug("Loader", "all load tasks finished", nil)
}
