package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/config"
	"github.com/sells-group/osmprep/internal/sink"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the output tables",
	Long: `Creates the nodes, nodes_tags, ways, ways_nodes, and ways_tags tables in the
configured SQLite database or PostgreSQL schema. Existing tables are left as
they are. The CSV driver needs no migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch cfg.Output.Driver {
		case config.DriverSQLite:
			db, err := sink.OpenSQLite(cfg.Output.SQLitePath)
			if err != nil {
				return eris.Wrap(err, "migrate")
			}
			defer db.Close() //nolint:errcheck

			if err := sink.MigrateSQLite(ctx, db); err != nil {
				return eris.Wrap(err, "migrate")
			}
		case config.DriverPostgres:
			pool, err := postgresPool(ctx, cfg.Output.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := sink.NewPostgres(pool, cfg.Output.Schema, cfg.Output.BatchSize).Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate")
			}
		case config.DriverCSV:
			zap.L().Info("csv output needs no migration")
			return nil
		default:
			return eris.Errorf("migrate: unknown driver %q", cfg.Output.Driver)
		}

		zap.L().Info("output tables ready", zap.String("driver", cfg.Output.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
