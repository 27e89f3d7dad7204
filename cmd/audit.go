package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osmprep/internal/audit"
	"github.com/sells-group/osmprep/internal/clean"
	"github.com/sells-group/osmprep/internal/osm"
)

var auditCmd = &cobra.Command{
	Use:       "audit [street|zip|state]",
	Short:     "List address values the cleaners would rewrite",
	ValidArgs: []string{"street", "zip", "state"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	Long: `Scans the OSM export for street names with unexpected trailing types,
postcodes that are not five digits, and state names other than Oregon or
Washington. Each value is printed with what the cleaner turns it into.

With no argument all three audits are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		applyInputFlag(cmd)

		rules, err := clean.LoadRules(cfg.Clean.RulesFile)
		if err != nil {
			return eris.Wrap(err, "audit: load cleaning rules")
		}

		in, err := osm.Open(cfg.Input.Path)
		if err != nil {
			return eris.Wrap(err, "audit")
		}
		defer in.Close() //nolint:errcheck

		rep, err := audit.Run(ctx, in, rules)
		if err != nil {
			return err
		}

		field := ""
		if len(args) == 1 {
			field = args[0]
		}
		printReport(os.Stdout, rep, field)

		zap.L().Debug("audit complete",
			zap.Int("street_types", len(rep.Streets)),
			zap.Int("zips", len(rep.Zips)),
			zap.Int("states", len(rep.States)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

// printReport writes the requested section of rep, or every section when
// field is empty.
func printReport(w io.Writer, rep audit.Report, field string) {
	if field == "" || field == "street" {
		fmt.Fprintln(w, "Street types:")
		for _, typ := range rep.StreetTypes() {
			fmt.Fprintf(w, "  %s\n", typ)
			printFindings(w, "    ", rep.Streets[typ])
		}
	}
	if field == "" || field == "zip" {
		fmt.Fprintln(w, "Postcodes:")
		printFindings(w, "  ", rep.Zips)
	}
	if field == "" || field == "state" {
		fmt.Fprintln(w, "States:")
		printFindings(w, "  ", rep.States)
	}
}

func printFindings(w io.Writer, indent string, fs []audit.Finding) {
	for _, f := range fs {
		fmt.Fprintf(w, "%s%s => %s\n", indent, f.Value, f.Cleaned)
	}
}
