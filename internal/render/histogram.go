package render

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"chartsvc/internal/stats"
)

const (
	densityPoints  = 200
	maxTickLabels  = 25
	tickCharWidth  = 7
	tickLabelSlack = 4
)

func prepareHistogram(spec ChartSpec, in Input, pal Palette) (drawFunc, error) {
	table, err := requireTable(in)
	if err != nil {
		return nil, err
	}
	values, err := table.Numbers(spec.Column)
	if err != nil {
		return nil, err
	}
	buckets, err := stats.HistogramBuckets(table, spec.Column, spec.Histogram.Bins)
	if err != nil {
		return nil, err
	}

	c := histogramChart(spec, pal, values, buckets)
	return func(cv Canvas) error { return cv.Plot(c) }, nil
}

func histogramChart(spec ChartSpec, pal Palette, values []float64, buckets []stats.Bucket) *chart.Chart {
	lo, hi := buckets[0].Lower, buckets[len(buckets)-1].Upper
	width := buckets[0].Upper - buckets[0].Lower

	mids := make([]float64, len(buckets))
	counts := make([]float64, len(buckets))
	maxY, total := 0.0, 0
	for i, b := range buckets {
		mids[i] = (b.Lower + b.Upper) / 2
		counts[i] = float64(b.Count)
		maxY = math.Max(maxY, counts[i])
		total += b.Count
	}

	series := []chart.Series{
		chart.HistogramSeries{
			Name: "count",
			Style: chart.Style{
				FillColor:   pal.At(0).WithAlpha(200),
				StrokeColor: pal.At(0),
				StrokeWidth: 1,
			},
			InnerSeries: chart.ContinuousSeries{XValues: mids, YValues: counts},
		},
	}

	if spec.Histogram.Density {
		if kde, err := stats.NewKDE(values); err == nil {
			xs, ys := kde.Evaluate(lo, hi, densityPoints)
			// scale the density so its area matches the bar area
			scale := float64(total) * width
			for i := range ys {
				ys[i] *= scale
				maxY = math.Max(maxY, ys[i])
			}
			series = append(series, chart.ContinuousSeries{
				Name:    "density",
				Style:   chart.Style{StrokeColor: pal.At(1), StrokeWidth: 2},
				XValues: xs,
				YValues: ys,
			})
		}
	}

	ticks := edgeTicks(buckets)
	xAxis := chart.XAxis{
		Name:  spec.Histogram.XLabel,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: ticks,
	}
	bottom := 30
	if labelsOverlap(ticks, spec.Width) {
		xAxis.TickStyle = chart.Style{TextRotationDegrees: 45}
		bottom = 30 + longestLabel(ticks)*tickCharWidth*7/10
	}

	return &chart.Chart{
		Title:  spec.Title,
		Width:  spec.Width,
		Height: spec.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: bottom},
		},
		XAxis: xAxis,
		YAxis: chart.YAxis{
			Name:  spec.Histogram.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: series,
	}
}

// edgeTicks labels bucket edges, thinned to at most maxTickLabels.
func edgeTicks(buckets []stats.Bucket) []chart.Tick {
	edges := make([]float64, 0, len(buckets)+1)
	for _, b := range buckets {
		edges = append(edges, b.Lower)
	}
	edges = append(edges, buckets[len(buckets)-1].Upper)

	step := (len(edges) + maxTickLabels - 1) / maxTickLabels
	ticks := make([]chart.Tick, 0, len(edges)/step+1)
	for i := 0; i < len(edges); i += step {
		ticks = append(ticks, chart.Tick{Value: edges[i], Label: formatTick(edges[i])})
	}
	if last := edges[len(edges)-1]; ticks[len(ticks)-1].Value != last {
		ticks = append(ticks, chart.Tick{Value: last, Label: formatTick(last)})
	}
	return ticks
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e7 || abs < 1e-3) {
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// labelsOverlap estimates whether horizontal tick labels would collide.
func labelsOverlap(ticks []chart.Tick, chartWidth int) bool {
	if len(ticks) < 2 {
		return false
	}
	slot := float64(chartWidth-100) / float64(len(ticks)-1)
	return float64(longestLabel(ticks)*tickCharWidth+tickLabelSlack) > slot
}

func longestLabel(ticks []chart.Tick) int {
	n := 0
	for _, t := range ticks {
		if len(t.Label) > n {
			n = len(t.Label)
		}
	}
	return n
}
