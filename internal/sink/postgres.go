package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/db"
	"github.com/sells-group/osmprep/internal/shape"
)

const defaultBatchSize = 5000

// Postgres buffers rows per table and loads them with COPY.
type Postgres struct {
	pool      db.Pool
	schema    string
	batchSize int
	buf       map[string][][]any
	counts    counter
	log       *zap.Logger
}

// NewPostgres returns a sink writing into schema (empty = search_path).
// batchSize <= 0 uses 5,000 rows.
func NewPostgres(pool db.Pool, schema string, batchSize int) *Postgres {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Postgres{
		pool:      pool,
		schema:    schema,
		batchSize: batchSize,
		buf:       make(map[string][][]any, len(shape.Tables)),
		counts:    counter{},
		log: zap.L().With(
			zap.String("component", "sink.postgres"),
			zap.String("schema", schema),
		),
	}
}

func postgresType(k shape.ColumnKind) string {
	switch k {
	case shape.Integer:
		return "bigint"
	case shape.Float:
		return "double precision"
	default:
		return "text"
	}
}

func postgresQuote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (p *Postgres) ident(table string) pgx.Identifier {
	if p.schema == "" {
		return pgx.Identifier{table}
	}
	return pgx.Identifier{p.schema, table}
}

// Migrate creates the schema and the output tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if p.schema != "" {
		sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", postgresQuote(p.schema))
		if _, err := p.pool.Exec(ctx, sql); err != nil {
			return eris.Wrapf(err, "postgres: create schema %s", p.schema)
		}
	}

	for _, t := range shape.Tables {
		sql := createTableSQL(p.ident(t.Name).Sanitize(), t, postgresType, postgresQuote)
		if _, err := p.pool.Exec(ctx, sql); err != nil {
			return eris.Wrapf(err, "postgres: create table %s", t.Name)
		}
	}
	return nil
}

// Truncate empties all output tables before a reload.
func (p *Postgres) Truncate(ctx context.Context) error {
	for _, t := range shape.Tables {
		sql := fmt.Sprintf("TRUNCATE %s", p.ident(t.Name).Sanitize())
		if _, err := p.pool.Exec(ctx, sql); err != nil {
			return eris.Wrapf(err, "postgres: truncate %s", t.Name)
		}
	}
	return nil
}

// Write implements Sink.
func (p *Postgres) Write(ctx context.Context, table shape.Table, rows []shape.Row) error {
	for _, row := range rows {
		vals, err := typedRow(table, row)
		if err != nil {
			return err
		}
		p.buf[table.Name] = append(p.buf[table.Name], vals)
	}

	if len(p.buf[table.Name]) >= p.batchSize {
		return p.flushTable(ctx, table)
	}
	return nil
}

func (p *Postgres) flushTable(ctx context.Context, table shape.Table) error {
	rows := p.buf[table.Name]
	if len(rows) == 0 {
		return nil
	}

	n, err := db.CopyFrom(ctx, p.pool, p.schema, table.Name, table.ColumnNames(), rows)
	if err != nil {
		return eris.Wrapf(err, "postgres: load %s", table.Name)
	}
	p.buf[table.Name] = rows[:0]
	p.counts.add(table.Name, int(n))

	p.log.Debug("batch loaded", zap.String("table", table.Name), zap.Int64("rows", n))
	return nil
}

// Flush implements Sink. Tables are flushed in declaration order.
func (p *Postgres) Flush(ctx context.Context) error {
	for _, t := range shape.Tables {
		if err := p.flushTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink. The pool is owned by the caller.
func (p *Postgres) Close() error {
	p.buf = nil
	return nil
}

// Counts implements Sink.
func (p *Postgres) Counts() map[string]int64 {
	return p.counts.snapshot()
}
