package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/kerbaras/comics/pkg/logging"
	"golang.org/x/sync/errgroup"
)

var ErrWarmInProgress = errors.New("cache warming already running")

// WarmProgress reports one finished comic of a warm run.
type WarmProgress struct {
	Slug   string
	Done   int
	Total  int
	Status string // "resized", "error"
	Error  error
}

// WarmResult summarizes a warm run.
type WarmResult struct {
	Total   int
	Resized int
	Failed  int
}

// Warmer resizes every comic of the index ahead of the first request, so
// page loads only hit the artifact cache.
type Warmer struct {
	index        *data.Index
	resizer      ImageResizer
	width        uint32
	workers      int
	running      atomic.Bool
	progressChan chan WarmProgress
}

func NewWarmer(index *data.Index, resizer ImageResizer, width uint32, workers int) *Warmer {
	if workers < 1 {
		workers = 1
	}
	if width == 0 {
		width = DefaultPageWidth
	}
	return &Warmer{
		index:        index,
		resizer:      resizer,
		width:        width,
		workers:      workers,
		progressChan: make(chan WarmProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving warm progress updates.
// Updates are dropped when nobody keeps up with them.
func (w *Warmer) GetProgressChannel() <-chan WarmProgress {
	return w.progressChan
}

func (w *Warmer) Running() bool {
	return w.running.Load()
}

// Warm resizes every comic with at most workers at a time. Failures of
// single comics are counted and reported, not returned; the only error is
// cancellation of ctx or a run already in progress.
func (w *Warmer) Warm(ctx context.Context) (WarmResult, error) {
	if !w.running.CompareAndSwap(false, true) {
		return WarmResult{}, ErrWarmInProgress
	}
	defer w.running.Store(false)

	comics := w.index.Entries()
	total := len(comics)

	var done, resized, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	for _, comic := range comics {
		if gctx.Err() != nil {
			break
		}
		comic := comic
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, err := w.resizer.Resize(comic.File, integrations.Fit{W: w.width})
			progress := WarmProgress{Slug: comic.Slug, Total: total, Status: "resized"}
			if err != nil {
				failed.Add(1)
				logging.Warn("failed to warm %s: %v", comic.Slug, err)
				progress.Status = "error"
				progress.Error = err
			} else {
				resized.Add(1)
			}
			progress.Done = int(done.Add(1))
			w.sendProgress(progress)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	result := WarmResult{Total: total, Resized: int(resized.Load()), Failed: int(failed.Load())}
	if err != nil {
		return result, fmt.Errorf("cache warming interrupted: %w", err)
	}

	logging.Info("warmed %d comics (%d failed)", result.Resized, result.Failed)
	return result, nil
}

func (w *Warmer) sendProgress(progress WarmProgress) {
	select {
	case w.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}
