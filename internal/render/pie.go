package render

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/stats"
)

// MissingLabel names the wedge of missing cells.
const MissingLabel = "(missing)"

func preparePie(spec ChartSpec, in Input, pal Palette) (drawFunc, error) {
	table, err := requireTable(in)
	if err != nil {
		return nil, err
	}
	counts, err := stats.ValueCounts(table, spec.Column)
	if err != nil {
		return nil, err
	}
	if counts.Total() == 0 {
		return nil, apperrors.NewEmptyDatasetError(fmt.Sprintf("column %q has no values to plot", spec.Column)).
			WithContext("column", spec.Column)
	}

	pie := &chart.PieChart{
		Title:  spec.Title,
		Width:  spec.Width,
		Height: spec.Height,
		Values: pieValues(counts, pal),
	}
	return func(cv Canvas) error { return cv.Plot(pie) }, nil
}

// pieValues builds one wedge per distinct value, labeled with its share.
func pieValues(counts *stats.FrequencyMap, pal Palette) []chart.Value {
	total := float64(counts.Total())
	entries := counts.Entries()
	values := make([]chart.Value, len(entries))
	for i, e := range entries {
		label := e.Key
		if label == "" {
			label = MissingLabel
		}
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", label, 100*float64(e.Count)/total),
			Value: float64(e.Count),
			Style: chart.Style{
				FillColor:   pal.At(i),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		}
	}
	return values
}
