package http

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "chartsvc/internal/errors"
	"chartsvc/internal/middleware"
	chartrender "chartsvc/internal/render"
	"chartsvc/internal/response"
	"chartsvc/internal/services"
	api "chartsvc/pkg/contracts/api/v1"
)

// AnalysisHandler handles the upload-and-analyze endpoints
type AnalysisHandler struct {
	service      AnalysisService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes registers the analysis endpoints on r
func (h *AnalysisHandler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator("multipart/form-data", "application/x-www-form-urlencoded"))

		r.Post("/analyze_data", h.AnalyzeData)
		r.Post("/visualize_data", h.VisualizeData)
		r.Post("/generate_pie_chart", h.GeneratePieChart)
		r.Post("/generate_word_cloud", h.wordCloud(false))
		r.Post("/frequency_word_cloud", h.wordCloud(true))
		r.Post("/visualize_skewness", h.distribution(services.MomentSkewness))
		r.Post("/visualize_kurtosis", h.distribution(services.MomentKurtosis))
		r.Post("/describe_column", h.DescribeColumn)
	})
}

// AnalyzeData handles POST /analyze_data
func (h *AnalysisHandler) AnalyzeData(w http.ResponseWriter, r *http.Request) {
	f, data, ok := h.upload(w, r)
	if !ok {
		return
	}

	req, err := analyzeRequest(f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), data, services.FilterFromRequest(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// VisualizeData handles POST /visualize_data
func (h *AnalysisHandler) VisualizeData(w http.ResponseWriter, r *http.Request) {
	f, data, ok := h.upload(w, r)
	if !ok {
		return
	}

	bins, err := parseInt("bins", f.Get("bins"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.HistogramRequest{Column: f.Get("column"), Bins: bins, Palette: f.Get("palette")}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	img, err := h.service.Histogram(r.Context(), data, services.HistogramParams{
		Column:  req.Column,
		Bins:    req.Bins,
		Palette: req.Palette,
	})
	h.writeImage(w, r, img, err)
}

// GeneratePieChart handles POST /generate_pie_chart
func (h *AnalysisHandler) GeneratePieChart(w http.ResponseWriter, r *http.Request) {
	f, data, ok := h.upload(w, r)
	if !ok {
		return
	}

	req := api.PieRequest{Column: f.Get("column"), Palette: f.Get("palette")}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	img, err := h.service.Pie(r.Context(), data, services.PieParams{Column: req.Column, Palette: req.Palette})
	h.writeImage(w, r, img, err)
}

// DescribeColumn handles POST /describe_column
func (h *AnalysisHandler) DescribeColumn(w http.ResponseWriter, r *http.Request) {
	f, data, ok := h.upload(w, r)
	if !ok {
		return
	}

	req := api.DescribeRequest{Column: f.Get("column")}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Describe(r.Context(), data, req.Column)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// distribution handles POST /visualize_skewness and /visualize_kurtosis
func (h *AnalysisHandler) distribution(moment services.Moment) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, data, ok := h.upload(w, r)
		if !ok {
			return
		}

		bins, err := parseInt("bins", f.Get("bins"))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		req := api.DistributionRequest{Column: f.Get("column_name"), Bins: bins, Palette: f.Get("palette")}
		if err := h.validator.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		img, err := h.service.Distribution(r.Context(), data, services.DistributionParams{
			Column:  req.Column,
			Moment:  moment,
			Bins:    req.Bins,
			Palette: req.Palette,
		})
		h.writeImage(w, r, img, err)
	}
}

// wordCloud handles POST /generate_word_cloud and /frequency_word_cloud.
// The uploaded file wins over the text field.
func (h *AnalysisHandler) wordCloud(scaled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := readForm(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		text, ok := f.File()
		if !ok {
			value, present := f.Value("text")
			if !present {
				h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
				return
			}
			text = []byte(value)
		}

		maxWords, err := parseInt("max_words", f.Get("max_words"))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		req := api.WordCloudRequest{MaxWords: maxWords, Palette: f.Get("palette")}
		if err := h.validator.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		img, err := h.service.WordCloud(r.Context(), text, services.WordCloudParams{
			FrequencyScaled: scaled,
			MaxWords:        req.MaxWords,
			Palette:         req.Palette,
		})
		h.writeImage(w, r, img, err)
	}
}

// upload reads the form and the required file, writing the error response
// when either is missing.
func (h *AnalysisHandler) upload(w http.ResponseWriter, r *http.Request) (*form, []byte, bool) {
	f, err := readForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, nil, false
	}
	data, ok := f.File()
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
		return nil, nil, false
	}
	return f, data, true
}

func (h *AnalysisHandler) writeImage(w http.ResponseWriter, r *http.Request, img chartrender.Image, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := response.WriteImage(w, img); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write image",
			slog.String("error", err.Error()))
	}
}

// analyzeRequest collects the fixed aliases and the generic predicates.
// Repeated in:<Column> keys add values to one predicate.
func analyzeRequest(f *form) (api.AnalyzeRequest, error) {
	var req api.AnalyzeRequest

	for _, alias := range []struct {
		key string
		dst **float64
	}{
		{"salary_filter", &req.SalaryFilter},
		{"age_filter", &req.AgeFilter},
	} {
		raw := strings.TrimSpace(f.Get(alias.key))
		if raw == "" {
			continue
		}
		n, err := parseNumber(alias.key, raw)
		if err != nil {
			return req, err
		}
		*alias.dst = &n
	}
	req.Occupations = f.Values("occupations_filter")

	var preds api.PredicateBuilder
	for _, fld := range f.fields {
		if !api.IsPredicateKey(fld.key) {
			continue
		}
		if err := preds.Add(fld.key, fld.value); err != nil {
			return req, predicateError(err)
		}
	}
	req.Predicates = preds.Predicates()
	return req, nil
}

func predicateError(err error) error {
	var predErr *api.PredicateError
	if !errors.As(err, &predErr) {
		return apierrors.InvalidRequestWithError(err)
	}
	switch {
	case errors.Is(err, api.ErrMissingColumn):
		return apierrors.ErrInvalidColumn
	case errors.Is(err, api.ErrBadThreshold):
		return apierrors.ErrValidation(predErr.Key, predErr.Key+" must be a number")
	default:
		return apierrors.ErrValidation(predErr.Key, fmt.Sprintf("unknown filter operator %q in %q", predErr.Op, predErr.Key))
	}
}

func parseNumber(field, raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, apierrors.ErrValidation(field, field+" must be a number")
	}
	return n, nil
}

// parseInt treats a blank value as zero, meaning "use the default".
func parseInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.ErrValidation(field, field+" must be an integer")
	}
	return n, nil
}
