package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/jyutdb/internal/cache"
	"github.com/ppiankov/jyutdb/internal/pipeline"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export whenever a partition changes",
	Long: `Watch runs an export, then watches the data directory and exports again
each time partition files change. Unchanged partitions are served from an
in-memory cache, so only edited files are decoded again.

Example:
  jyutdb watch --data ./data --out ./dist
  jyutdb watch --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	exportData.register(watchCmd.Flags())
	watchCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	watchCmd.Flags().StringVar(&exportName, "name", "", "output database name (default from config)")
	watchCmd.Flags().StringVar(&exportSQLite, "sqlite", "", "also mirror the result into this SQLite file")
	watchCmd.Flags().IntVar(&exportWorkers, "workers", 0, "text resolution workers (default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before rebuilding (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := exportConfig(nil)
	if err != nil {
		return err
	}
	if watchDebounce > 0 {
		cfg.Watch.Debounce = watchDebounce
	}
	if cfg.Data.Manifest != "" {
		return fmt.Errorf("watch needs a data directory, not a manifest")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	partitions := cache.NewMemoryCache(time.Hour, 10*time.Minute)
	p := pipeline.NewPipeline(cfg, partitions, logger)
	renderer := pipeline.NewRenderer(cfg.Output.Indent)
	out := cmd.OutOrStdout()

	rebuild := func(ctx context.Context) error {
		// the file set may have changed since the last run
		paths, err := partitionPaths(cfg, nil)
		if err != nil {
			return err
		}
		report, err := p.Run(ctx, paths)
		if err != nil {
			return err
		}
		renderer.RenderSummary(out, report)
		return nil
	}

	if err := rebuild(ctx); err != nil {
		logger.Error("initial export failed", zap.Error(err))
	}

	outputPath := filepath.Join(cfg.Output.Dir, cfg.Output.Name+".json")
	w, err := pipeline.NewWatcher(cfg.Data.Dir, cfg.Watch.Debounce, rebuild, logger, outputPath)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Data.Dir, err)
	}
	defer w.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", cfg.Data.Dir)
	<-w.Done()
	return nil
}
