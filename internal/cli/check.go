package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/jyutdb/internal/loader"
	"github.com/ppiankov/jyutdb/internal/store"
)

var checkData dataFlags

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [partition.json...]",
	Short: "Validate and merge partitions without writing anything",
	Long: `Check loads every partition, validates its structure and merges the
entries, then reports counts and identifier collisions. Nothing is written.

Example:
  jyutdb check
  jyutdb check --strict-collisions`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkData.register(checkCmd.Flags())
}

// loadStore reads configuration and merges the selected partitions
func loadStore(ctx context.Context, flags *dataFlags, args []string) (*store.Store, *loader.Result, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	flags.apply(cfg)

	paths, err := partitionPaths(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return loader.New(cfg.Merge, nil, logger).Load(ctx, paths)
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, res, err := loadStore(context.Background(), &checkData, args)
	if res != nil {
		for _, c := range res.Collisions {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s defined by %s and %s\n", c.ID, c.Previous, c.Current)
		}
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d partitions, %d entries, %d collisions\n",
		len(res.Partitions), st.Len(), len(res.Collisions))
	return nil
}
