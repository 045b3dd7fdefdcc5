package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/jyutdb/internal/model"
	"github.com/ppiankov/jyutdb/internal/pipeline"
)

var (
	exportData    dataFlags
	exportOut     string
	exportName    string
	exportSQLite  string
	exportWorkers int
	exportNoFan   bool
	exportCompact bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [partition.json...]",
	Short: "Merge partitions into one cross-referenced database",
	Long: `Export runs the full merge:
- Load partitions (explicit paths, a manifest, or every *.json under the data dir)
- Merge them in order into one namespace
- Substitute __SELF__ and __WORD__ placeholders and resolve {ID} citations
- Build symmetric related and refBy groups and fan out variant content
- Write <output.dir>/<output.name>.json, and optionally a SQLite mirror

Example:
  jyutdb export
  jyutdb export --data ./data --out ./dist --name main
  jyutdb export a.json b.json --sqlite dist/main.sqlite --workers 8`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportData.register(exportCmd.Flags())

	// Output flags
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "output database name (default from config)")
	exportCmd.Flags().StringVar(&exportSQLite, "sqlite", "", "also mirror the result into this SQLite file")
	exportCmd.Flags().BoolVar(&exportCompact, "compact", false, "write JSON without indentation")

	// Processing flags
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 0, "text resolution workers (default from config)")
	exportCmd.Flags().BoolVar(&exportNoFan, "no-fan-out", false, "do not copy canonical content onto variants")
}

func exportConfig(args []string) (*model.Config, []string, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	exportData.apply(cfg)
	if exportOut != "" {
		cfg.Output.Dir = exportOut
	}
	if exportName != "" {
		cfg.Output.Name = exportName
	}
	if exportSQLite != "" {
		cfg.Output.SQLite = exportSQLite
	}
	if exportCompact {
		cfg.Output.Indent = false
	}
	if exportWorkers > 0 {
		cfg.Walk.Workers = exportWorkers
	}
	if exportNoFan {
		cfg.Propagate.FanOut = false
	}
	cfg.Output.Verbose = verbose

	paths, err := partitionPaths(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, paths, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, paths, err := exportConfig(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Merging %d partitions\n", len(paths))
		fmt.Fprintf(os.Stderr, "Output: %s/%s.json\n", cfg.Output.Dir, cfg.Output.Name)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, nil, logger)
	report, err := p.Run(ctx, paths)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	pipeline.NewRenderer(cfg.Output.Indent).RenderSummary(cmd.OutOrStdout(), report)
	return nil
}
