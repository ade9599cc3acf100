package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"chartsvc/internal/config"
	"chartsvc/internal/dataset"
	"chartsvc/internal/filter"
	"chartsvc/internal/infrastructure"
	"chartsvc/internal/payload"
	"chartsvc/internal/render"
	"chartsvc/internal/response"
	"chartsvc/internal/stats"
	"chartsvc/internal/textfreq"
	api "chartsvc/pkg/contracts/api/v1"
)

// Capability names one analysis endpoint in logs and metrics.
type Capability string

const (
	CapabilityFilter        Capability = "filter"
	CapabilityHistogram     Capability = "histogram"
	CapabilityPie           Capability = "pie"
	CapabilityWordCloud     Capability = "wordcloud"
	CapabilityFrequencyWord Capability = "wordcloud_frequency"
	CapabilitySkewness      Capability = "skewness"
	CapabilityKurtosis      Capability = "kurtosis"
	CapabilityDescribe      Capability = "describe"
)

// Moment selects the statistic annotated on a distribution plot.
type Moment string

const (
	MomentSkewness Moment = "skewness"
	MomentKurtosis Moment = "kurtosis"
)

// Column names targeted by the fixed filter aliases.
const (
	SalaryColumn     = "Salary"
	AgeColumn        = "Age"
	OccupationColumn = "Occupation"
)

// ChartRenderer draws a chart spec.
type ChartRenderer interface {
	Render(ctx context.Context, spec render.ChartSpec, in render.Input) (render.Image, error)
}

// PipelineRecorder receives per-request pipeline measurements.
type PipelineRecorder interface {
	RecordRequest(ctx context.Context, capability string, err error)
	RecordRows(ctx context.Context, capability string, parsed, retained int)
}

// HistogramParams selects the column and look of a histogram.
type HistogramParams struct {
	Column  string
	Bins    int
	Palette string
}

// PieParams selects the column and look of a pie chart.
type PieParams struct {
	Column  string
	Palette string
}

// DistributionParams selects a skewness or kurtosis plot.
type DistributionParams struct {
	Column  string
	Moment  Moment
	Bins    int
	Palette string
}

// WordCloudParams selects uniform or frequency-scaled word sizing.
type WordCloudParams struct {
	FrequencyScaled bool
	MaxWords        int
	Palette         string
}

// AnalysisService runs the parse, filter, aggregate and render pipeline.
type AnalysisService struct {
	renderer ChartRenderer
	recorder PipelineRecorder
	limits   dataset.Options
	defaults config.RenderConfig
	logger   *slog.Logger
}

// NewAnalysisService wires the pipeline. recorder may be nil.
func NewAnalysisService(renderer ChartRenderer, recorder PipelineRecorder, upload config.UploadConfig, defaults config.RenderConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		renderer: renderer,
		recorder: recorder,
		limits:   dataset.Options{MaxBytes: upload.MaxBytes, MaxRows: upload.MaxRows},
		defaults: defaults,
		logger:   infrastructure.WithComponent(logger, "analysis_service"),
	}
}

// FilterFromRequest builds the conjunction requested by an analyze call.
// Aliases come first in fixed order, then generic predicates as sent.
func FilterFromRequest(req api.AnalyzeRequest) filter.Spec {
	var spec filter.Spec
	if req.SalaryFilter != nil {
		spec = spec.And(filter.GreaterThan(SalaryColumn, *req.SalaryFilter))
	}
	if req.AgeFilter != nil {
		spec = spec.And(filter.GreaterThan(AgeColumn, *req.AgeFilter))
	}
	if len(req.Occupations) > 0 {
		spec = spec.And(filter.In(OccupationColumn, req.Occupations...))
	}
	for _, p := range req.Predicates {
		switch p.Op {
		case api.OpGreaterThan:
			spec = spec.And(filter.GreaterThan(p.Column, p.Threshold))
		case api.OpIn:
			spec = spec.And(filter.In(p.Column, p.Values...))
		}
	}
	return spec
}

// Analyze parses data, applies spec and returns the surviving rows.
func (s *AnalysisService) Analyze(ctx context.Context, data []byte, spec filter.Spec) (result response.RecordSet, err error) {
	defer s.finish(ctx, CapabilityFilter, time.Now(), &err)

	table, err := s.parse(data)
	if err != nil {
		return response.RecordSet{}, err
	}
	filtered, err := filter.Apply(table, spec)
	if err != nil {
		return response.RecordSet{}, err
	}
	s.rows(ctx, CapabilityFilter, table.Len(), filtered.Len())

	s.logger.DebugContext(ctx, "table filtered",
		slog.Int("predicates", len(spec)),
		slog.Int("rows_in", table.Len()),
		slog.Int("rows_out", filtered.Len()))
	return response.Records(filtered), nil
}

// Histogram renders the distribution of one numeric column.
func (s *AnalysisService) Histogram(ctx context.Context, data []byte, p HistogramParams) (img render.Image, err error) {
	defer s.finish(ctx, CapabilityHistogram, time.Now(), &err)

	table, err := s.parse(data)
	if err != nil {
		return render.Image{}, err
	}
	s.rows(ctx, CapabilityHistogram, table.Len(), table.Len())

	spec := s.sized(render.HistogramSpec(p.Column, s.bins(p.Bins)), p.Palette)
	return s.renderer.Render(ctx, spec, render.Input{Table: table})
}

// Pie renders the category shares of one column.
func (s *AnalysisService) Pie(ctx context.Context, data []byte, p PieParams) (img render.Image, err error) {
	defer s.finish(ctx, CapabilityPie, time.Now(), &err)

	table, err := s.parse(data)
	if err != nil {
		return render.Image{}, err
	}
	s.rows(ctx, CapabilityPie, table.Len(), table.Len())

	spec := s.sized(render.PieSpec(p.Column), p.Palette)
	return s.renderer.Render(ctx, spec, render.Input{Table: table})
}

// Distribution renders a histogram with density overlay titled with the
// column's sample skewness or excess kurtosis.
func (s *AnalysisService) Distribution(ctx context.Context, data []byte, p DistributionParams) (img render.Image, err error) {
	capability := CapabilitySkewness
	if p.Moment == MomentKurtosis {
		capability = CapabilityKurtosis
	}
	defer s.finish(ctx, capability, time.Now(), &err)

	table, err := s.parse(data)
	if err != nil {
		return render.Image{}, err
	}
	s.rows(ctx, capability, table.Len(), table.Len())

	summary, err := stats.Describe(table, p.Column)
	if err != nil {
		return render.Image{}, err
	}

	spec := s.sized(render.HistogramSpec(p.Column, s.bins(p.Bins)), p.Palette)
	spec.Title = DistributionTitle(p.Moment, p.Column, summary)
	return s.renderer.Render(ctx, spec, render.Input{Table: table})
}

// DistributionTitle formats e.g. "Skewness - Distribution of Age (skewness = 0.412)".
func DistributionTitle(m Moment, column string, summary stats.Summary) string {
	label, value := "Skewness", summary.Skewness
	if m == MomentKurtosis {
		label, value = "Kurtosis", summary.Kurtosis
	}
	formatted := "undefined"
	if !math.IsNaN(value) {
		formatted = fmt.Sprintf("%.3f", value)
	}
	return fmt.Sprintf("%s - Distribution of %s (%s = %s)", label, column, string(m), formatted)
}

// Describe summarizes one numeric column.
func (s *AnalysisService) Describe(ctx context.Context, data []byte, column string) (summary stats.Summary, err error) {
	defer s.finish(ctx, CapabilityDescribe, time.Now(), &err)

	table, err := s.parse(data)
	if err != nil {
		return stats.Summary{}, err
	}
	s.rows(ctx, CapabilityDescribe, table.Len(), table.Len())
	return stats.Describe(table, column)
}

// WordCloud renders the words of text, sized uniformly or by frequency.
func (s *AnalysisService) WordCloud(ctx context.Context, text []byte, p WordCloudParams) (img render.Image, err error) {
	capability := CapabilityWordCloud
	scaling := 0.0
	if p.FrequencyScaled {
		capability = CapabilityFrequencyWord
		scaling = s.defaults.WordCloud.RelativeScaling
	}
	defer s.finish(ctx, capability, time.Now(), &err)

	text, err = payload.Normalize(text, s.limits.MaxBytes)
	if err != nil {
		return render.Image{}, textError(err, s.limits.MaxBytes)
	}
	freqs, err := textfreq.TokenizeAndCount(string(text))
	if err != nil {
		return render.Image{}, err
	}

	spec := s.sized(render.WordCloudSpec(scaling), p.Palette)
	spec.WordCloud.MinFontSize = s.defaults.WordCloud.MinFontSize
	spec.WordCloud.MaxFontSize = s.defaults.WordCloud.MaxFontSize
	spec.WordCloud.MaxWords = s.defaults.WordCloud.MaxWords
	if p.MaxWords > 0 {
		spec.WordCloud.MaxWords = p.MaxWords
	}
	return s.renderer.Render(ctx, spec, render.Input{Frequencies: freqs})
}

func (s *AnalysisService) parse(data []byte) (*dataset.Table, error) {
	return dataset.ParseWithOptions(data, s.limits)
}

func (s *AnalysisService) bins(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.defaults.Bins
}

// sized applies configured dimensions and the palette, falling back to the
// configured default palette.
func (s *AnalysisService) sized(spec render.ChartSpec, palette string) render.ChartSpec {
	spec.Width = s.defaults.Width
	spec.Height = s.defaults.Height
	spec.Palette = palette
	if spec.Palette == "" {
		spec.Palette = s.defaults.Palette
	}
	return spec
}

func (s *AnalysisService) rows(ctx context.Context, c Capability, parsed, retained int) {
	infrastructure.AddSpanEvent(ctx, "rows filtered",
		attribute.String("capability", string(c)),
		attribute.Int("parsed", parsed),
		attribute.Int("retained", retained))
	if s.recorder != nil {
		s.recorder.RecordRows(ctx, string(c), parsed, retained)
	}
}

func (s *AnalysisService) finish(ctx context.Context, c Capability, start time.Time, errp *error) {
	err := *errp
	if s.recorder != nil {
		s.recorder.RecordRequest(ctx, string(c), err)
	}
	if err != nil {
		return
	}
	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("capability", string(c)),
		slog.Duration("elapsed", time.Since(start)))
}
