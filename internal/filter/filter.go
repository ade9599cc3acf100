// Package filter narrows a table to the rows satisfying every predicate of a Spec.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"chartsvc/internal/dataset"
	apperrors "chartsvc/internal/errors"
)

// Op identifies a predicate kind.
type Op string

const (
	OpGreaterThan Op = ">"
	OpIn          Op = "in"
)

// Predicate is a single row condition on one column.
type Predicate struct {
	Column    string
	Op        Op
	Threshold float64
	Values    []string
}

// GreaterThan keeps rows whose numeric value in column is strictly above threshold.
// Missing values never match.
func GreaterThan(column string, threshold float64) Predicate {
	return Predicate{Column: column, Op: OpGreaterThan, Threshold: threshold}
}

// In keeps rows whose value in column equals one of values, ignoring case.
func In(column string, values ...string) Predicate {
	return Predicate{Column: column, Op: OpIn, Values: values}
}

func (p Predicate) String() string {
	switch p.Op {
	case OpGreaterThan:
		return fmt.Sprintf("%s > %s", p.Column, strconv.FormatFloat(p.Threshold, 'f', -1, 64))
	case OpIn:
		return fmt.Sprintf("%s in [%s]", p.Column, strings.Join(p.Values, ", "))
	default:
		return fmt.Sprintf("%s %s ?", p.Column, p.Op)
	}
}

// Spec is an ordered, AND-composed list of predicates.
type Spec []Predicate

// And returns a spec with p appended.
func (s Spec) And(p Predicate) Spec {
	out := make(Spec, len(s), len(s)+1)
	copy(out, s)
	return append(out, p)
}

// Columns returns the referenced column names in predicate order.
func (s Spec) Columns() []string {
	cols := make([]string, len(s))
	for i, p := range s {
		cols[i] = p.Column
	}
	return cols
}

// Validate checks every predicate against the schema without touching rows.
func (s Spec) Validate(schema *dataset.Schema) error {
	for _, p := range s {
		f, _, err := schema.Require(p.Column)
		if err != nil {
			return err
		}
		switch p.Op {
		case OpGreaterThan:
			if f.Kind != dataset.KindNumber {
				return apperrors.NewTypeMismatchError(p.Column, string(p.Op))
			}
			if math.IsNaN(p.Threshold) {
				return apperrors.NewAppValidationError(fmt.Sprintf("threshold for %q is not a number", p.Column))
			}
		case OpIn:
		default:
			return apperrors.NewAppValidationError(fmt.Sprintf("unsupported operator %q", p.Op))
		}
	}
	return nil
}

type rowTest func(row int) bool

// Apply returns the rows of t satisfying all predicates. An empty spec returns t.
func Apply(t *dataset.Table, spec Spec) (*dataset.Table, error) {
	if len(spec) == 0 {
		return t, nil
	}
	if err := spec.Validate(t.Schema()); err != nil {
		return nil, err
	}

	tests := make([]rowTest, len(spec))
	for i, p := range spec {
		test, err := compile(t, p)
		if err != nil {
			return nil, err
		}
		tests[i] = test
	}

	keep := make([]int, 0, t.Len())
rows:
	for r := 0; r < t.Len(); r++ {
		for _, test := range tests {
			if !test(r) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	return t.Select(keep), nil
}

func compile(t *dataset.Table, p Predicate) (rowTest, error) {
	switch p.Op {
	case OpGreaterThan:
		values, err := t.Numbers(p.Column)
		if err != nil {
			return nil, err
		}
		threshold := p.Threshold
		// NaN compares false, so missing cells are excluded
		return func(r int) bool { return values[r] > threshold }, nil
	default:
		values, err := t.Strings(p.Column)
		if err != nil {
			return nil, err
		}
		wanted := p.Values
		return func(r int) bool {
			for _, w := range wanted {
				if strings.EqualFold(values[r], w) {
					return true
				}
			}
			return false
		}, nil
	}
}
