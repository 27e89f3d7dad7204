package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/osmprep/internal/shape"
)

// CSV writes each table to <dir>/<table>.csv with a header row.
type CSV struct {
	dir     string
	files   map[string]*os.File
	writers map[string]*csv.Writer
	counts  counter
}

// NewCSV creates dir if needed and opens one file per output table,
// truncating existing files.
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "sink: create output dir %s", dir)
	}

	c := &CSV{
		dir:     dir,
		files:   make(map[string]*os.File, len(shape.Tables)),
		writers: make(map[string]*csv.Writer, len(shape.Tables)),
		counts:  counter{},
	}

	for _, t := range shape.Tables {
		path := c.Path(t)
		f, err := os.Create(path)
		if err != nil {
			c.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sink: create %s", path)
		}
		c.files[t.Name] = f

		w := csv.NewWriter(f)
		if err := w.Write(t.ColumnNames()); err != nil {
			c.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sink: write header to %s", path)
		}
		c.writers[t.Name] = w
	}

	return c, nil
}

// Path returns the file path for table t.
func (c *CSV) Path(t shape.Table) string {
	return filepath.Join(c.dir, t.Name+".csv")
}

// Write implements Sink.
func (c *CSV) Write(_ context.Context, table shape.Table, rows []shape.Row) error {
	w, ok := c.writers[table.Name]
	if !ok {
		return eris.Errorf("sink: unknown table %q", table.Name)
	}

	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = NormalizeText(v)
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrapf(err, "sink: write %s row", table.Name)
		}
	}
	c.counts.add(table.Name, len(rows))
	return nil
}

// Flush implements Sink.
func (c *CSV) Flush(context.Context) error {
	for _, t := range shape.Tables {
		w, ok := c.writers[t.Name]
		if !ok {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return eris.Wrapf(err, "sink: flush %s", c.Path(t))
		}
	}
	return nil
}

// Close implements Sink.
func (c *CSV) Close() error {
	var first error
	for _, t := range shape.Tables {
		f, ok := c.files[t.Name]
		if !ok {
			continue
		}
		if w, ok := c.writers[t.Name]; ok {
			w.Flush()
		}
		if err := f.Close(); err != nil && first == nil {
			first = eris.Wrapf(err, "sink: close %s", c.Path(t))
		}
	}
	c.files = nil
	return first
}

// Counts implements Sink.
func (c *CSV) Counts() map[string]int64 {
	return c.counts.snapshot()
}
