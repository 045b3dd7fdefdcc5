package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/jyutdb/internal/inspect"
)

var propsData dataFlags

// propsCmd represents the props command
var propsCmd = &cobra.Command{
	Use:   "props <key>...",
	Short: "List the distinct values of entry properties",
	Long: `Props merges the partitions and prints, for each requested entry field,
every distinct value it takes across the database, as JSON.

Example:
  jyutdb props head tail
  jyutdb props controversial --data ./data`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProps,
}

func init() {
	rootCmd.AddCommand(propsCmd)
	propsData.register(propsCmd.Flags())
}

func runProps(cmd *cobra.Command, args []string) error {
	st, _, err := loadStore(context.Background(), &propsData, nil)
	if err != nil {
		return err
	}

	props, err := inspect.Props(st, args...)
	if err != nil {
		return err
	}

	out := make(map[string][]any, len(props))
	for _, p := range props {
		out[p.Key] = p.Values
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
