package http

import (
	"context"

	"chartsvc/internal/filter"
	"chartsvc/internal/render"
	"chartsvc/internal/response"
	"chartsvc/internal/services"
	"chartsvc/internal/stats"
)

// AnalysisService defines the pipeline operations behind the analysis routes
type AnalysisService interface {
	Analyze(ctx context.Context, data []byte, spec filter.Spec) (response.RecordSet, error)
	Histogram(ctx context.Context, data []byte, p services.HistogramParams) (render.Image, error)
	Pie(ctx context.Context, data []byte, p services.PieParams) (render.Image, error)
	Distribution(ctx context.Context, data []byte, p services.DistributionParams) (render.Image, error)
	Describe(ctx context.Context, data []byte, column string) (stats.Summary, error)
	WordCloud(ctx context.Context, text []byte, p services.WordCloudParams) (render.Image, error)
}
