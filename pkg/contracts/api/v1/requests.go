// Package api contains the HTTP request and response contracts of the chart service.
// Requests arrive as multipart or urlencoded forms; the transport layer decodes
// them into these structs and validates them with go-playground/validator.
package api

// Predicate operators accepted in generic filter fields.
const (
	OpGreaterThan = "gt"
	OpIn          = "in"
)

// PredicateRequest is one generic filter, sent as gt:<Column>=n or in:<Column>=v.
type PredicateRequest struct {
	Op        string   `json:"op" validate:"required,oneof=gt in"`
	Column    string   `json:"column" validate:"colname"`
	Threshold float64  `json:"threshold"`
	Values    []string `json:"values" validate:"required_if=Op in,dive,required"`
}

// AnalyzeRequest filters an uploaded table.
type AnalyzeRequest struct {
	SalaryFilter *float64          `json:"salary_filter"`
	AgeFilter    *float64          `json:"age_filter"`
	Occupations  []string          `json:"occupations_filter" validate:"dive,required"`
	Predicates   []PredicateRequest `json:"predicates" validate:"dive"`
}

// HistogramRequest renders a histogram of one numeric column.
type HistogramRequest struct {
	Column  string `json:"column" validate:"colname"`
	Bins    int    `json:"bins" validate:"gte=0,lte=500"`
	Palette string `json:"palette" validate:"omitempty,palette"`
}

// PieRequest renders the category shares of one column.
type PieRequest struct {
	Column  string `json:"column" validate:"colname"`
	Palette string `json:"palette" validate:"omitempty,palette"`
}

// DistributionRequest renders a skewness or kurtosis distribution plot.
type DistributionRequest struct {
	Column  string `json:"column_name" validate:"colname"`
	Bins    int    `json:"bins" validate:"gte=0,lte=500"`
	Palette string `json:"palette" validate:"omitempty,palette"`
}

// DescribeRequest summarizes one numeric column.
type DescribeRequest struct {
	Column string `json:"column" validate:"colname"`
}

// WordCloudRequest renders a word cloud from text or an uploaded file.
// Empty text is reported as an empty-input error, not a validation failure.
type WordCloudRequest struct {
	MaxWords int    `json:"max_words" validate:"gte=0,lte=1000"`
	Palette  string `json:"palette" validate:"omitempty,palette"`
}
