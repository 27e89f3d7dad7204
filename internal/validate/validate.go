// Package validate checks shaped row sets against the declared table schema
// before they are written.
package validate

import (
	"fmt"
	"strconv"

	"github.com/sells-group/osmprep/internal/shape"
)

// Validator checks a shaped set. A non-nil error halts the run.
type Validator interface {
	Validate(set shape.Set) error
}

// Error describes the first constraint a set violated.
type Error struct {
	Table  string
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validate: element of type %q (row %d): %s", e.Table, e.Row, e.Reason)
	}
	return fmt.Sprintf("validate: element of type %q (row %d): field %q value %q: %s",
		e.Table, e.Row, e.Field, e.Value, e.Reason)
}

// Nop accepts every set. It is used when validation is disabled.
type Nop struct{}

// Validate implements Validator.
func (Nop) Validate(shape.Set) error { return nil }

// Schema validates each row against its table's column list: the row must have
// one value per column and integer and float columns must parse.
type Schema struct{}

// Validate implements Validator.
func (Schema) Validate(set shape.Set) error {
	for _, b := range set.Batches() {
		for i, row := range b.Rows {
			if err := checkRow(b.Table, i, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkRow(t shape.Table, idx int, row shape.Row) error {
	if len(row) != len(t.Columns) {
		return &Error{
			Table:  t.Name,
			Row:    idx,
			Reason: fmt.Sprintf("has %d values, want %d", len(row), len(t.Columns)),
		}
	}

	for i, c := range t.Columns {
		v := row[i]
		fail := func(reason string) error {
			return &Error{Table: t.Name, Row: idx, Field: c.Name, Value: v, Reason: reason}
		}

		switch c.Kind {
		case shape.Integer:
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return fail("must be of integer type")
			}
		case shape.Float:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fail("must be of float type")
			}
		}
	}
	return nil
}
