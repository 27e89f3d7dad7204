package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/clean"
	"github.com/sells-group/osmprep/internal/config"
	"github.com/sells-group/osmprep/internal/osm"
	"github.com/sells-group/osmprep/internal/prep"
	"github.com/sells-group/osmprep/internal/shape"
	"github.com/sells-group/osmprep/internal/sink"
	"github.com/sells-group/osmprep/internal/validate"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert an OSM export into the five output tables",
	Long: `Reads nodes and ways from the OSM export one at a time, cleans addr:street,
addr:postcode and addr:state values, drops tags whose keys contain problem
characters, and writes the rows to the configured driver.

Schema validation is off by default; enable it with --validate for small
samples, since it checks every row.

Examples:
  osmprep process --input map.osm --out ./csv
  osmprep process --input sample.osm --validate
  osmprep process --input portland.osm.bz2 --driver sqlite --sqlite portland.db`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyInputFlag(cmd)
		applyProcessFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		rules, err := clean.LoadRules(cfg.Clean.RulesFile)
		if err != nil {
			return eris.Wrap(err, "process: load cleaning rules")
		}

		in, err := osm.Open(cfg.Input.Path)
		if err != nil {
			return eris.Wrap(err, "process")
		}
		defer in.Close() //nolint:errcheck

		out, closeOut, err := openSink(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeOut()

		var v validate.Validator = validate.Nop{}
		if cfg.Process.Validate {
			v = validate.Schema{}
		}

		runID := uuid.NewString()
		zap.L().Info("starting OSM preparation",
			zap.String("run_id", runID),
			zap.String("input", cfg.Input.Path),
			zap.String("driver", cfg.Output.Driver),
			zap.Bool("validate", cfg.Process.Validate),
		)

		stats, err := prep.Process(ctx, osm.NewReader(in), prep.Options{
			Shaper:        shape.New(rules),
			Validator:     v,
			Sink:          out,
			ProgressEvery: cfg.Process.ProgressEvery,
			RunID:         runID,
		})
		if err != nil {
			return eris.Wrap(err, "process")
		}

		printStats(stats)
		return nil
	},
}

func init() {
	processCmd.Flags().String("driver", "", "output driver: csv, sqlite, or postgres (default: from config)")
	processCmd.Flags().String("out", "", "CSV output directory (default: from config)")
	processCmd.Flags().String("sqlite", "", "SQLite database path (default: from config)")
	processCmd.Flags().Bool("validate", false, "validate every shaped element against the table schema")
	processCmd.Flags().Bool("truncate", false, "truncate PostgreSQL tables before loading")
	rootCmd.AddCommand(processCmd)
}

// applyProcessFlags overrides config values with explicitly set flags.
func applyProcessFlags(cmd *cobra.Command) {
	if d, _ := cmd.Flags().GetString("driver"); d != "" {
		cfg.Output.Driver = strings.ToLower(d)
	}
	if dir, _ := cmd.Flags().GetString("out"); dir != "" {
		cfg.Output.Dir = dir
	}
	if p, _ := cmd.Flags().GetString("sqlite"); p != "" {
		cfg.Output.SQLitePath = p
	}
	if cmd.Flags().Changed("validate") {
		cfg.Process.Validate, _ = cmd.Flags().GetBool("validate")
	}
	if cmd.Flags().Changed("truncate") {
		cfg.Output.Truncate, _ = cmd.Flags().GetBool("truncate")
	}
}

// openSink builds the configured sink. The returned func closes the sink and
// any connection it holds.
func openSink(ctx context.Context, c *config.Config) (sink.Sink, func(), error) {
	switch c.Output.Driver {
	case config.DriverCSV:
		s, err := sink.NewCSV(c.Output.Dir)
		if err != nil {
			return nil, nil, eris.Wrap(err, "process: open csv output")
		}
		return s, func() { s.Close() }, nil //nolint:errcheck
	case config.DriverSQLite:
		s, err := sink.NewSQLite(ctx, c.Output.SQLitePath, c.Output.BatchSize)
		if err != nil {
			return nil, nil, eris.Wrap(err, "process: open sqlite output")
		}
		return s, func() { s.Close() }, nil //nolint:errcheck
	case config.DriverPostgres:
		pool, err := postgresPool(ctx, c.Output.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := sink.NewPostgres(pool, c.Output.Schema, c.Output.BatchSize)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, eris.Wrap(err, "process: migrate")
		}
		if c.Output.Truncate {
			if err := s.Truncate(ctx); err != nil {
				pool.Close()
				return nil, nil, eris.Wrap(err, "process: truncate")
			}
		}
		return s, func() { s.Close(); pool.Close() }, nil //nolint:errcheck
	default:
		return nil, nil, eris.Errorf("process: unknown driver %q", c.Output.Driver)
	}
}

// postgresPool connects and pings the database.
func postgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, eris.New("postgres: no database_url configured (set output.database_url)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping database")
	}

	return pool, nil
}

// printStats prints a per-table summary of a run.
func printStats(s prep.Stats) {
	fmt.Printf("Processed %d nodes and %d ways in %s (%d tags dropped)\n",
		s.Nodes, s.Ways, s.Elapsed.Round(time.Millisecond), s.DroppedTags)
	fmt.Printf("%-12s %12s\n", "Table", "Rows")
	fmt.Println(strings.Repeat("-", 25))
	for _, t := range shape.Tables {
		fmt.Printf("%-12s %12d\n", t.Name, s.Rows[t.Name])
	}
}
