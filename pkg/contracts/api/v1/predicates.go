package api

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Reasons a generic predicate key or value is rejected.
var (
	ErrUnknownOperator = errors.New("unknown filter operator")
	ErrMissingColumn   = errors.New("missing column name")
	ErrBadThreshold    = errors.New("threshold must be a number")
)

// PredicateError reports which op:Column key was rejected.
type PredicateError struct {
	Key string
	Op  string
	Err error
}

func (e *PredicateError) Error() string {
	if errors.Is(e.Err, ErrUnknownOperator) {
		return fmt.Sprintf("%s: %v %q", e.Key, e.Err, e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *PredicateError) Unwrap() error { return e.Err }

// IsPredicateKey reports whether a form key has the op:Column shape.
func IsPredicateKey(key string) bool {
	return strings.Contains(key, ":")
}

// PredicateBuilder collects generic predicates in arrival order. Repeated
// in:<Column> keys add values to the first predicate for that column.
type PredicateBuilder struct {
	predicates []PredicateRequest
	inIndex    map[string]int
}

// Add parses one op:Column key with its value.
func (b *PredicateBuilder) Add(key, value string) error {
	op, column, _ := strings.Cut(key, ":")
	switch op {
	case OpGreaterThan, OpIn:
	default:
		return &PredicateError{Key: key, Op: op, Err: ErrUnknownOperator}
	}
	if column == "" {
		return &PredicateError{Key: key, Op: op, Err: ErrMissingColumn}
	}

	if op == OpGreaterThan {
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return &PredicateError{Key: key, Op: op, Err: ErrBadThreshold}
		}
		b.predicates = append(b.predicates, PredicateRequest{Op: op, Column: column, Threshold: n})
		return nil
	}

	if b.inIndex == nil {
		b.inIndex = make(map[string]int)
	}
	if i, seen := b.inIndex[column]; seen {
		b.predicates[i].Values = append(b.predicates[i].Values, value)
		return nil
	}
	b.inIndex[column] = len(b.predicates)
	b.predicates = append(b.predicates, PredicateRequest{Op: op, Column: column, Values: []string{value}})
	return nil
}

// Predicates returns what has been added so far.
func (b *PredicateBuilder) Predicates() []PredicateRequest {
	return b.predicates
}
