package cmd

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"rootforge/internal/adapters/report"
)

var (
	ledgerGlob     string
	ledgerInternal bool
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List modification ledger entries",
	Long: `List the committed ledger entries, optionally filtered by a glob.

Examples:
  rootforge-cli ledger
  rootforge-cli ledger --glob 'chara/equipment/e0087/**' --internal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ledgerGlob != "" && !doublestar.ValidatePattern(ledgerGlob) {
			return fmt.Errorf("invalid glob: %s", ledgerGlob)
		}
		mods, err := report.ListMods(context.Background(), archive, ledgerGlob, ledgerInternal)
		if err != nil {
			return err
		}
		if len(mods) == 0 {
			fmt.Println("No modifications.")
			return nil
		}
		for _, m := range mods {
			fmt.Println(report.FormatMod(m))
		}
		return nil
	},
}

func init() {
	ledgerCmd.Flags().StringVarP(&ledgerGlob, "glob", "g", "", "doublestar glob over archive paths")
	ledgerCmd.Flags().BoolVar(&ledgerInternal, "internal", false, "include placement table entries written by the archive itself")
	rootCmd.AddCommand(ledgerCmd)
}
