// Package sink writes shaped rows to CSV files, SQLite, or PostgreSQL.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/osmprep/internal/shape"
)

// Sink accepts rows for the output tables. Rows for a table arrive in the
// order they must be stored.
type Sink interface {
	// Write appends rows to table.
	Write(ctx context.Context, table shape.Table, rows []shape.Row) error
	// Flush persists any buffered rows.
	Flush(ctx context.Context) error
	// Close releases the sink's resources. Flush must be called first.
	Close() error
	// Counts returns the number of rows written per table name.
	Counts() map[string]int64
}

// NormalizeText returns s as NFC-normalized UTF-8, with invalid byte
// sequences replaced by U+FFFD.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.ToValidUTF8(s, "\uFFFD"))
}

// typedRow converts row values to the Go types of the table's columns.
func typedRow(t shape.Table, row shape.Row) ([]any, error) {
	if len(row) != len(t.Columns) {
		return nil, eris.Errorf("sink: %s row has %d values, want %d", t.Name, len(row), len(t.Columns))
	}

	out := make([]any, len(row))
	for i, c := range t.Columns {
		v := row[i]
		switch c.Kind {
		case shape.Integer:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "sink: %s.%s: parse integer %q", t.Name, c.Name, v)
			}
			out[i] = n
		case shape.Float:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "sink: %s.%s: parse float %q", t.Name, c.Name, v)
			}
			out[i] = f
		default:
			out[i] = NormalizeText(v)
		}
	}
	return out, nil
}

// counter tracks rows written per table.
type counter map[string]int64

func (c counter) add(table string, n int) {
	c[table] += int64(n)
}

func (c counter) snapshot() map[string]int64 {
	out := make(map[string]int64, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// primaryKeys names the key column of the parent tables.
var primaryKeys = map[string]string{
	shape.Nodes.Name: "id",
	shape.Ways.Name:  "id",
}

// createTableSQL renders a CREATE TABLE IF NOT EXISTS statement for t.
func createTableSQL(qualified string, t shape.Table, typeName func(shape.ColumnKind) string, quote func(string) string) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := fmt.Sprintf("%s %s", quote(c.Name), typeName(c.Kind))
		if primaryKeys[t.Name] == c.Name {
			def += " PRIMARY KEY NOT NULL"
		}
		cols[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", qualified, strings.Join(cols, ",\n\t"))
}
