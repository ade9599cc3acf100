package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chartsvc/internal/config"
	apierrors "chartsvc/internal/errors"
	"chartsvc/internal/filter"
	"chartsvc/internal/middleware"
	"chartsvc/internal/render"
	"chartsvc/internal/response"
	"chartsvc/internal/services"
	"chartsvc/internal/shared/testutil"
	"chartsvc/internal/stats"
)

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) Analyze(ctx context.Context, data []byte, spec filter.Spec) (response.RecordSet, error) {
	args := m.Called(ctx, data, spec)
	return args.Get(0).(response.RecordSet), args.Error(1)
}

func (m *mockAnalysisService) Histogram(ctx context.Context, data []byte, p services.HistogramParams) (render.Image, error) {
	args := m.Called(ctx, data, p)
	return args.Get(0).(render.Image), args.Error(1)
}

func (m *mockAnalysisService) Pie(ctx context.Context, data []byte, p services.PieParams) (render.Image, error) {
	args := m.Called(ctx, data, p)
	return args.Get(0).(render.Image), args.Error(1)
}

func (m *mockAnalysisService) Distribution(ctx context.Context, data []byte, p services.DistributionParams) (render.Image, error) {
	args := m.Called(ctx, data, p)
	return args.Get(0).(render.Image), args.Error(1)
}

func (m *mockAnalysisService) Describe(ctx context.Context, data []byte, column string) (stats.Summary, error) {
	args := m.Called(ctx, data, column)
	return args.Get(0).(stats.Summary), args.Error(1)
}

func (m *mockAnalysisService) WordCloud(ctx context.Context, text []byte, p services.WordCloudParams) (render.Image, error) {
	args := m.Called(ctx, text, p)
	return args.Get(0).(render.Image), args.Error(1)
}

func newAnalysisRouter(t *testing.T, svc AnalysisService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	r.NotFound(errorHandler.NotFound)
	NewAnalysisHandler(svc, middleware.NewValidator(), errorHandler, logger).Routes(r)
	return r
}

func newPipelineRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default()
	renderer := render.NewRenderer(render.NewPool(render.PNGBackend{}, 1), logger)
	return newAnalysisRouter(t, services.NewAnalysisService(renderer, nil, cfg.Upload, cfg.Render, logger))
}

// multipartRequest builds a POST with fields given as key, value pairs and an
// optional file upload.
func multipartRequest(t *testing.T, path string, file []byte, fields ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i+1 < len(fields); i += 2 {
		require.NoError(t, mw.WriteField(fields[i], fields[i+1]))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "upload.csv")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestAnalyzeData(t *testing.T) {
	router := newPipelineRouter(t)

	tests := []struct {
		name      string
		fields    []string
		wantNames []string
	}{
		{
			name:      "salary filter keeps higher earners",
			fields:    []string{"salary_filter", "55000"},
			wantNames: []string{"B", "C"},
		},
		{
			name:      "no filters",
			wantNames: []string{"A", "B", "C"},
		},
		{
			name:      "blank alias is ignored",
			fields:    []string{"age_filter", " "},
			wantNames: []string{"A", "B", "C"},
		},
		{
			name:      "generic predicates",
			fields:    []string{"gt:Age", "28", "in:Name", "C", "in:Name", "B"},
			wantNames: []string{"C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, "/analyze_data", []byte(testutil.FilterCSV), tt.fields...))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Data    []map[string]any `json:"data_analysis_result"`
				Columns []string         `json:"selected_columns"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, []string{"Name", "Age", "Salary"}, body.Columns)

			names := make([]string, 0, len(body.Data))
			for _, row := range body.Data {
				names = append(names, row["Name"].(string))
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestAnalyzeData_BuildsSpecInFormOrder(t *testing.T) {
	svc := &mockAnalysisService{}
	want := filter.Spec{
		filter.GreaterThan("Salary", 1),
		filter.In("Occupation", "Analyst"),
		filter.In("Occupation", "Engineer", "Manager"),
		filter.GreaterThan("Age", 30),
	}
	svc.On("Analyze", mock.Anything, []byte(testutil.PeopleCSV), want).
		Return(response.RecordSet{}, nil).Once()

	rec := httptest.NewRecorder()
	newAnalysisRouter(t, svc).ServeHTTP(rec, multipartRequest(t, "/analyze_data", []byte(testutil.PeopleCSV),
		"in:Occupation", "Engineer",
		"gt:Age", "30",
		"occupations_filter", "Analyst",
		"in:Occupation", "Manager",
		"salary_filter", "1",
	))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAnalysisHandler_Errors(t *testing.T) {
	router := newPipelineRouter(t)
	people := []byte(testutil.PeopleCSV)

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", nil, "salary_filter", "1")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantError:  "No file uploaded",
		},
		{
			name: "bodiless request",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/visualize_data", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file uploaded",
		},
		{
			name: "non-numeric alias",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "salary_filter", "lots")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "salary_filter must be a number",
		},
		{
			name: "unknown filter column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "gt:Height", "3")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_COLUMN",
			wantError:  `Column "Height" does not exist in the CSV file`,
		},
		{
			name: "unknown filter operator",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "lt:Age", "30")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantError:  `unknown filter operator "lt" in "lt:Age"`,
		},
		{
			name: "filter without column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "in:", "x")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantError:  "Invalid column name",
		},
		{
			name: "non-numeric threshold",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "gt:Age", "old")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantError:  "gt:Age must be a number",
		},
		{
			name: "range filter on text column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", people, "gt:Name", "3")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "TYPE_MISMATCH",
		},
		{
			name: "malformed csv",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/analyze_data", []byte("a,b\n\"unterminated\n"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MALFORMED_INPUT",
			wantError:  "Invalid CSV file format",
		},
		{
			name: "pie on absent column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/generate_pie_chart", people, "column", "Height")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_COLUMN",
			wantError:  `Column "Height" does not exist in the CSV file`,
		},
		{
			name: "histogram without column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/visualize_data", people)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantError:  "Invalid column name",
		},
		{
			name: "histogram with bad bins",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/visualize_data", people, "column", "Age", "bins", "ten")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "bins must be an integer",
		},
		{
			name: "unknown palette",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/visualize_data", people, "column", "Age", "palette", "neon")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "skewness of text column",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/visualize_skewness", people, "column_name", "Occupation")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "NON_NUMERIC_COLUMN",
		},
		{
			name: "empty word cloud text",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/generate_word_cloud", strings.NewReader("text="))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_INPUT",
		},
		{
			name: "word cloud without input",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/frequency_word_cloud", nil, "palette", "tableau")
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file uploaded",
		},
		{
			name: "unsupported method",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/analyze_data", nil)
			},
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "Method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req(t))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeJSON(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalysisHandler_Images(t *testing.T) {
	router := newPipelineRouter(t)
	people := []byte(testutil.PeopleCSV)

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"histogram", func(t *testing.T) *http.Request {
			return multipartRequest(t, "/visualize_data", people, "column", "Age", "bins", "4")
		}},
		{"pie", func(t *testing.T) *http.Request {
			return multipartRequest(t, "/generate_pie_chart", people, "column", "Occupation", "palette", "viridis")
		}},
		{"skewness", func(t *testing.T) *http.Request {
			return multipartRequest(t, "/visualize_skewness", people, "column_name", "Age")
		}},
		{"kurtosis", func(t *testing.T) *http.Request {
			return multipartRequest(t, "/visualize_kurtosis", people, "column_name", "Salary")
		}},
		{"word cloud from file", func(t *testing.T) *http.Request {
			return multipartRequest(t, "/generate_word_cloud", []byte(testutil.WordsText))
		}},
		{"frequency word cloud from text", func(t *testing.T) *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/frequency_word_cloud",
				strings.NewReader("text=the+cat+and+the+hat&max_words=3"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req(t))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, render.ContentTypePNG, rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("Content-Length"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
		})
	}
}

func TestDescribeColumn(t *testing.T) {
	rec := httptest.NewRecorder()
	newPipelineRouter(t).ServeHTTP(rec,
		multipartRequest(t, "/describe_column", []byte(testutil.PeopleCSV), "column", "Salary"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "Salary", body["column"])
	assert.Equal(t, float64(4), body["count"])
	assert.Equal(t, float64(1), body["missing"])
	assert.Equal(t, float64(42000), body["min"])
}

func TestAnalysisHandler_PassesParams(t *testing.T) {
	svc := &mockAnalysisService{}
	png := render.Image{Data: []byte("\x89PNG"), ContentType: render.ContentTypePNG}
	svc.On("Distribution", mock.Anything, mock.Anything, services.DistributionParams{
		Column: "Age", Moment: services.MomentKurtosis, Bins: 7, Palette: "pastel",
	}).Return(png, nil).Once()
	svc.On("WordCloud", mock.Anything, []byte("a b"), services.WordCloudParams{
		FrequencyScaled: false, MaxWords: 0,
	}).Return(png, nil).Once()

	router := newAnalysisRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/visualize_kurtosis", []byte(testutil.PeopleCSV),
		"column_name", "Age", "bins", "7", "palette", "pastel"))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/generate_word_cloud", nil, "text", "a b"))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_BodyLimit(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	r := chi.NewRouter()
	r.Use(middleware.BodyLimit(256))
	NewAnalysisHandler(&mockAnalysisService{}, middleware.NewValidator(), errorHandler, logger).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "/visualize_data", bytes.Repeat([]byte("1\n"), 1024), "column", "x"))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeJSON(t, rec)["error_code"])
}

func TestAnalysisHandler_BodyLimitAcrossPartBoundaries(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	upload := bytes.Repeat([]byte("1\n"), 64<<10)

	build := func(t *testing.T, fileFirst bool) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		writeFile := func() {
			fw, err := mw.CreateFormFile("file", "upload.csv")
			require.NoError(t, err)
			_, err = fw.Write(upload)
			require.NoError(t, err)
		}
		if fileFirst {
			writeFile()
		}
		require.NoError(t, mw.WriteField("column", "x"))
		require.NoError(t, mw.WriteField("bins", "5"))
		if !fileFirst {
			writeFile()
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/visualize_data", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	for _, limit := range []int64{64, 200, 256, 4096, 64 << 10} {
		for _, fileFirst := range []bool{false, true} {
			t.Run(fmt.Sprintf("limit=%d/fileFirst=%t", limit, fileFirst), func(t *testing.T) {
				r := chi.NewRouter()
				r.Use(middleware.BodyLimit(limit))
				NewAnalysisHandler(&mockAnalysisService{}, middleware.NewValidator(), errorHandler, logger).Routes(r)

				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, build(t, fileFirst))

				require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
				assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeJSON(t, rec)["error_code"])
			})
		}
	}
}

func TestAnalysisHandler_RejectsJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze_data", strings.NewReader(`{"salary_filter":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newAnalysisRouter(t, &mockAnalysisService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
