package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/osmprep/internal/shape"
)

// SQLite writes rows into a SQLite database, committing every batchSize rows.
type SQLite struct {
	db        *sql.DB
	tx        *sql.Tx
	stmts     map[string]*sql.Stmt
	batchSize int
	pending   int
	counts    counter
}

func sqliteType(k shape.ColumnKind) string {
	switch k {
	case shape.Integer:
		return "INTEGER"
	case shape.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// OpenSQLite opens the database at dsn and configures WAL mode. The tables
// are not created; call Migrate.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return db, nil
}

// MigrateSQLite creates the output tables if they do not exist.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	for _, t := range shape.Tables {
		stmt := createTableSQL(sqliteQuote(t.Name), t, sqliteType, sqliteQuote)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrapf(err, "sqlite: create table %s", t.Name)
		}
	}
	return nil
}

// NewSQLite opens dsn, creates the output tables, and prepares the inserts.
func NewSQLite(ctx context.Context, dsn string, batchSize int) (*SQLite, error) {
	db, err := OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	if err := MigrateSQLite(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	s := &SQLite{
		db:        db,
		stmts:     make(map[string]*sql.Stmt, len(shape.Tables)),
		batchSize: batchSize,
		counts:    counter{},
	}

	for _, t := range shape.Tables {
		cols := make([]string, len(t.Columns))
		marks := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = sqliteQuote(c.Name)
			marks[i] = "?"
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			sqliteQuote(t.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
		stmt, err := db.PrepareContext(ctx, q)
		if err != nil {
			s.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: prepare insert into %s", t.Name)
		}
		s.stmts[t.Name] = stmt
	}

	return s, nil
}

// Write implements Sink.
func (s *SQLite) Write(ctx context.Context, table shape.Table, rows []shape.Row) error {
	stmt, ok := s.stmts[table.Name]
	if !ok {
		return eris.Errorf("sqlite: unknown table %q", table.Name)
	}

	for _, row := range rows {
		vals, err := typedRow(table, row)
		if err != nil {
			return err
		}

		if s.tx == nil {
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				return eris.Wrap(err, "sqlite: begin tx")
			}
			s.tx = tx
		}

		if _, err := s.tx.StmtContext(ctx, stmt).ExecContext(ctx, vals...); err != nil {
			return eris.Wrapf(err, "sqlite: insert into %s", table.Name)
		}
		s.counts.add(table.Name, 1)

		s.pending++
		if s.pending >= s.batchSize {
			if err := s.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush implements Sink by committing the open transaction.
func (s *SQLite) Flush(context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	s.pending = 0
	if err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	return nil
}

// Close implements Sink. Uncommitted rows are rolled back.
func (s *SQLite) Close() error {
	if s.tx != nil {
		s.tx.Rollback() //nolint:errcheck
		s.tx = nil
	}
	for _, stmt := range s.stmts {
		stmt.Close() //nolint:errcheck
	}
	return s.db.Close()
}

// Counts implements Sink.
func (s *SQLite) Counts() map[string]int64 {
	return s.counts.snapshot()
}
