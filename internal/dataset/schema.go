package dataset

import (
	"fmt"

	apperrors "chartsvc/internal/errors"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one column.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`
}

// Schema is the ordered field list of a Table plus a name index.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates names and builds the index. Empty or duplicate names
// are malformed input.
func NewSchema(fields []Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, apperrors.NewMalformedInputError("Invalid CSV file format", fmt.Errorf("header row is empty"))
	}

	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, apperrors.NewMalformedInputError("Invalid CSV file format",
				fmt.Errorf("column %d has an empty name", i+1))
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, apperrors.NewMalformedInputError("Invalid CSV file format",
				fmt.Errorf("duplicate column name %q", f.Name))
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the named field and its position.
func (s *Schema) Field(name string) (Field, int, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, -1, false
	}
	return s.fields[i], i, true
}

// Require returns the named field or an UnknownColumnError.
func (s *Schema) Require(name string) (Field, int, error) {
	f, i, ok := s.Field(name)
	if !ok {
		return Field{}, -1, apperrors.NewUnknownColumnError(name)
	}
	return f, i, nil
}
