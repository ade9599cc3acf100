// Command chartcli runs one analysis on a local CSV or XLSX file, writing a
// PNG for chart kinds and JSON for filter and describe.
//
//	chartcli -kind histogram -in people.csv -column Age -out age.png
//	chartcli -kind filter -in people.csv -where gt:Salary=55000 -where in:Occupation=Engineer
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"chartsvc/internal/config"
	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/infrastructure"
	"chartsvc/internal/render"
	"chartsvc/internal/services"
	"chartsvc/internal/validation"
	"chartsvc/pkg/contracts"
	api "chartsvc/pkg/contracts/api/v1"
)

const (
	kindFilter        = "filter"
	kindDescribe      = "describe"
	kindHistogram     = "histogram"
	kindPie           = "pie"
	kindSkewness      = "skewness"
	kindKurtosis      = "kurtosis"
	kindWordCloud     = "wordcloud"
	kindFrequencyWord = "wordcloud-frequency"
)

// whereFlags collects repeated -where op:Column=value arguments.
type whereFlags []string

func (w *whereFlags) String() string { return strings.Join(*w, ",") }

func (w *whereFlags) Set(v string) error {
	*w = append(*w, v)
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("chartcli failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chartcli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("kind", kindHistogram, "filter | describe | histogram | pie | skewness | kurtosis | wordcloud | wordcloud-frequency")
	in := fs.String("in", "", "input file (CSV, XLSX, gzip, or text for word clouds)")
	out := fs.String("out", "", "output PNG path for chart kinds")
	column := fs.String("column", "", "column to chart or describe")
	bins := fs.Int("bins", 0, "histogram bins (0 uses the configured default)")
	palette := fs.String("palette", "", "color palette")
	version := fs.Bool("version", false, "print version and exit")
	var where whereFlags
	fs.Var(&where, "where", "filter predicate gt:Column=n or in:Column=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		_, err := fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return apperrors.NewConfigError("failed to load configuration", err)
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr)
	ctx = infrastructure.EnsureTraceID(ctx)

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(*in, cfg.Upload.MaxBytes); err != nil {
		return err
	}
	if *kind != kindFilter && *kind != kindDescribe {
		if err := validator.ValidateOutputFile(*out); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	renderer := render.NewRenderer(render.NewPool(render.PNGBackend{}, 1), logger)
	svc := services.NewAnalysisService(renderer, nil, cfg.Upload, cfg.Render, logger)

	logger.InfoContext(ctx, "Running analysis",
		slog.String("kind", *kind),
		slog.String("input", *in),
		slog.Int("bytes", len(data)))

	var img render.Image
	switch *kind {
	case kindFilter:
		req, err := parseWhere(where)
		if err != nil {
			return err
		}
		result, err := svc.Analyze(ctx, data, services.FilterFromRequest(req))
		if err != nil {
			return err
		}
		return writeJSON(stdout, result)
	case kindDescribe:
		summary, err := svc.Describe(ctx, data, *column)
		if err != nil {
			return err
		}
		return writeJSON(stdout, summary)
	case kindHistogram:
		img, err = svc.Histogram(ctx, data, services.HistogramParams{Column: *column, Bins: *bins, Palette: *palette})
	case kindPie:
		img, err = svc.Pie(ctx, data, services.PieParams{Column: *column, Palette: *palette})
	case kindSkewness, kindKurtosis:
		moment := services.MomentSkewness
		if *kind == kindKurtosis {
			moment = services.MomentKurtosis
		}
		img, err = svc.Distribution(ctx, data, services.DistributionParams{
			Column: *column, Moment: moment, Bins: *bins, Palette: *palette,
		})
	case kindWordCloud, kindFrequencyWord:
		img, err = svc.WordCloud(ctx, data, services.WordCloudParams{
			FrequencyScaled: *kind == kindFrequencyWord,
			Palette:         *palette,
		})
	default:
		return fmt.Errorf("unknown kind %q", *kind)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(*out, img.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.InfoContext(ctx, "Chart written",
		slog.String("path", *out),
		slog.Int("bytes", len(img.Data)))
	return nil
}

// parseWhere turns -where arguments into an analyze request. Repeated
// in:Column predicates merge into one.
func parseWhere(where []string) (api.AnalyzeRequest, error) {
	var (
		req   api.AnalyzeRequest
		preds api.PredicateBuilder
	)
	for _, w := range where {
		key, value, ok := strings.Cut(w, "=")
		if !ok {
			return req, fmt.Errorf("predicate %q must be op:Column=value", w)
		}
		if err := preds.Add(key, value); err != nil {
			return req, fmt.Errorf("predicate %q: %w", w, err)
		}
	}
	req.Predicates = preds.Predicates()
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
