package render

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of canvases alive at once. With one worker every
// render is serialized, which is what a non-reentrant backend needs.
type Pool struct {
	backend Backend
	sem     *semaphore.Weighted
	workers int
}

// NewPool returns a pool over backend with the given number of slots.
func NewPool(backend Backend, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		backend: backend,
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
	}
}

// Workers returns the number of slots.
func (p *Pool) Workers() int { return p.workers }

// Do acquires a slot, creates a canvas, runs draw on it and returns the
// encoded image. The canvas is released before the slot is freed.
func (p *Pool) Do(ctx context.Context, width, height int, draw func(Canvas) error) (Image, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Image{}, fmt.Errorf("acquire render slot: %w", err)
	}
	defer p.sem.Release(1)

	canvas, err := p.backend.Create(width, height)
	if err != nil {
		return Image{}, err
	}
	defer canvas.Release()

	if err := draw(canvas); err != nil {
		return Image{}, err
	}
	return canvas.Image()
}
