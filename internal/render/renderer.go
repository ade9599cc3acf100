// Package render turns chart specifications and analysed data into PNG images.
//
// Each chart kind is a strategy that first checks its inputs (column
// presence, emptiness) and then draws onto a Canvas borrowed from a Pool.
// Validation failures never consume a render slot.
package render

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chartsvc/internal/dataset"
	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/stats"
)

// Input carries the data a strategy draws from. Histograms and pies read
// Table; word clouds read Frequencies.
type Input struct {
	Table       *dataset.Table
	Frequencies *stats.FrequencyMap
}

// Observer is notified after every render attempt.
type Observer interface {
	ObserveRender(ctx context.Context, kind string, elapsed time.Duration, err error)
}

type drawFunc func(Canvas) error

type strategy func(spec ChartSpec, in Input, pal Palette) (drawFunc, error)

var strategies = map[Kind]strategy{
	KindHistogram: prepareHistogram,
	KindPie:       preparePie,
	KindWordCloud: prepareWordCloud,
}

// Renderer dispatches chart specs to strategies.
type Renderer struct {
	pool     *Pool
	logger   *slog.Logger
	observer Observer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithObserver reports render timings and failures to o.
func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observer = o }
}

// NewRenderer returns a renderer drawing through pool.
func NewRenderer(pool *Pool, logger *slog.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		pool:   pool,
		logger: logger.With(slog.String("component", "renderer")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws spec from in. Zero dimensions and palette take defaults.
func (r *Renderer) Render(ctx context.Context, spec ChartSpec, in Input) (Image, error) {
	start := time.Now()
	spec = spec.withDefaults()

	img, err := r.render(ctx, spec, in)

	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer.ObserveRender(ctx, string(spec.Kind), elapsed, err)
	}
	if err != nil {
		r.logger.DebugContext(ctx, "render failed",
			slog.String("kind", string(spec.Kind)),
			slog.String("column", spec.Column),
			slog.String("error", err.Error()))
		return Image{}, err
	}

	r.logger.DebugContext(ctx, "chart rendered",
		slog.String("kind", string(spec.Kind)),
		slog.String("column", spec.Column),
		slog.Int("bytes", len(img.Data)),
		slog.Duration("elapsed", elapsed))
	return img, nil
}

func (r *Renderer) render(ctx context.Context, spec ChartSpec, in Input) (Image, error) {
	if err := spec.Validate(); err != nil {
		return Image{}, err
	}
	prepare, ok := strategies[spec.Kind]
	if !ok {
		return Image{}, apperrors.NewAppValidationError("unsupported chart kind " + string(spec.Kind))
	}
	pal, _ := LookupPalette(spec.Palette)

	draw, err := prepare(spec, in, pal)
	if err != nil {
		return Image{}, err
	}

	img, err := r.pool.Do(ctx, spec.Width, spec.Height, draw)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Image{}, err
		}
		return Image{}, apperrors.NewRenderError("failed to render "+string(spec.Kind), err)
	}
	return img, nil
}

// Ready reports whether the renderer can draw: the word font parses and the
// pool has at least one slot.
func (r *Renderer) Ready() error {
	if _, err := loadWordFont(); err != nil {
		return err
	}
	if r.pool == nil || r.pool.Workers() < 1 {
		return errors.New("render pool has no slots")
	}
	return nil
}

func requireTable(in Input) (*dataset.Table, error) {
	if in.Table == nil {
		return nil, apperrors.NewEmptyDatasetError("no table to render")
	}
	return in.Table, nil
}
