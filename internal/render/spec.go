package render

import (
	"fmt"
	"strings"

	apperrors "chartsvc/internal/errors"
)

// Kind selects a rendering strategy.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindPie       Kind = "pie"
	KindWordCloud Kind = "wordcloud"
)

// Default chart dimensions and word cloud parameters.
const (
	DefaultWidth           = 800
	DefaultHeight          = 600
	DefaultMinFontSize     = 10
	DefaultMaxFontSize     = 100
	DefaultMaxWords        = 200
	DefaultRelativeScaling = 0.5
)

// HistogramOptions configures bar and density rendering.
type HistogramOptions struct {
	Bins    int
	Density bool
	XLabel  string
	YLabel  string
}

// WordCloudOptions configures word sizing.
type WordCloudOptions struct {
	MinFontSize     float64
	MaxFontSize     float64
	RelativeScaling float64
	MaxWords        int
}

// ChartSpec describes one chart to render. Only the options matching Kind are read.
type ChartSpec struct {
	Kind    Kind
	Column  string
	Title   string
	Width   int
	Height  int
	Palette string

	Histogram HistogramOptions
	WordCloud WordCloudOptions
}

// HistogramSpec returns a histogram of column with bins buckets and a density overlay.
func HistogramSpec(column string, bins int) ChartSpec {
	return ChartSpec{
		Kind:   KindHistogram,
		Column: column,
		Title:  "Histogram of " + column,
		Histogram: HistogramOptions{
			Bins:    bins,
			Density: true,
			XLabel:  column,
			YLabel:  "Count",
		},
	}
}

// PieSpec returns a pie chart of the value counts of column.
func PieSpec(column string) ChartSpec {
	return ChartSpec{
		Kind:   KindPie,
		Column: column,
		Title:  "Distribution of " + capitalize(column),
	}
}

// WordCloudTitle heads both word cloud variants.
const WordCloudTitle = "Word Cloud"

// WordCloudSpec returns a word cloud with the given relative scaling.
func WordCloudSpec(relativeScaling float64) ChartSpec {
	return ChartSpec{
		Kind:  KindWordCloud,
		Title: WordCloudTitle,
		WordCloud: WordCloudOptions{
			MinFontSize:     DefaultMinFontSize,
			MaxFontSize:     DefaultMaxFontSize,
			RelativeScaling: relativeScaling,
			MaxWords:        DefaultMaxWords,
		},
	}
}

// withDefaults fills zero dimensions and font bounds.
func (s ChartSpec) withDefaults() ChartSpec {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Palette == "" {
		s.Palette = DefaultPalette
	}
	if s.Kind == KindWordCloud {
		wc := &s.WordCloud
		if wc.MinFontSize == 0 {
			wc.MinFontSize = DefaultMinFontSize
		}
		if wc.MaxFontSize == 0 {
			wc.MaxFontSize = DefaultMaxFontSize
		}
		if wc.MaxWords == 0 {
			wc.MaxWords = DefaultMaxWords
		}
	}
	return s
}

// Validate checks the spec after defaults are applied.
func (s ChartSpec) Validate() error {
	if s.Width < 16 || s.Height < 16 || s.Width > 4096 || s.Height > 4096 {
		return apperrors.NewAppValidationError(fmt.Sprintf("chart size %dx%d is out of range", s.Width, s.Height))
	}
	if _, ok := palettes[s.Palette]; !ok {
		return apperrors.NewAppValidationError(fmt.Sprintf("unknown palette %q", s.Palette))
	}
	switch s.Kind {
	case KindHistogram:
		if s.Column == "" {
			return apperrors.NewAppValidationError("Invalid column name")
		}
		if s.Histogram.Bins < 0 {
			return apperrors.NewAppValidationError(fmt.Sprintf("bins must not be negative, got %d", s.Histogram.Bins))
		}
	case KindPie:
		if s.Column == "" {
			return apperrors.NewAppValidationError("Invalid column name")
		}
	case KindWordCloud:
		wc := s.WordCloud
		if wc.RelativeScaling < 0 || wc.RelativeScaling > 1 {
			return apperrors.NewAppValidationError(fmt.Sprintf("relative scaling must be within [0, 1], got %v", wc.RelativeScaling))
		}
		if wc.MinFontSize <= 0 || wc.MinFontSize > wc.MaxFontSize {
			return apperrors.NewAppValidationError(fmt.Sprintf("font bounds [%v, %v] are invalid", wc.MinFontSize, wc.MaxFontSize))
		}
		if wc.MaxWords < 0 {
			return apperrors.NewAppValidationError("max words must not be negative")
		}
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unknown chart kind %q", s.Kind))
	}
	return nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
