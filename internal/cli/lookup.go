package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/jyutdb/internal/inspect"
)

var (
	lookupData  dataFlags
	lookupFuzzy bool
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <id-or-jyutping>",
	Short: "Find entries by identifier or reading",
	Long: `Lookup merges the partitions and lists the entries whose identifier or
jyutping equals the query. With --fuzzy the query only has to be a substring.

Example:
  jyutdb lookup muk6
  jyutdb lookup A0 --fuzzy`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupData.register(lookupCmd.Flags())
	lookupCmd.Flags().BoolVar(&lookupFuzzy, "fuzzy", false, "match substrings of identifiers and readings")
}

func runLookup(cmd *cobra.Command, args []string) error {
	st, _, err := loadStore(context.Background(), &lookupData, nil)
	if err != nil {
		return err
	}

	hits := inspect.Lookup(st, args[0], lookupFuzzy)
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintf(out, "✗ no entry matches %q\n", args[0])
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(out, "%-12s %s  %s  %s\n", h.ID, h.Char, h.Jyutping, h.Pinyin)
	}
	return nil
}
