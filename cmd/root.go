package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "osmprep",
	Short: "Prepare OpenStreetMap exports for SQL loading",
	Long: `Streams an OpenStreetMap XML export, cleans street names, postcodes, and state
names, and writes the nodes, nodes_tags, ways, ways_nodes, and ways_tags tables
as CSV files, a SQLite database, or PostgreSQL tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("input", "", "OSM export path; .gz, .bz2 and .zst are decompressed (default: from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyInputFlag overrides the configured input path with --input.
func applyInputFlag(cmd *cobra.Command) {
	if in, _ := cmd.Flags().GetString("input"); in != "" {
		cfg.Input.Path = in
	}
}
