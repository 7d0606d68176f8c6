package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rootforge/internal/domain"
)

var catalogCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the item catalog used for attribution",
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <root> <item-name>",
	Short: "Record an item as belonging to a root",
	Long: `Record an item name for a root. Clones attribute their ledger entries
and name their mod pack after the alphabetically first item of each root.

Example:
  rootforge-cli catalog add equipment/12/top "Bronze Shirt" --category Body`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := domain.ParseRoot(args[0])
		if err != nil {
			return err
		}
		item := domain.Item{Name: args[1], Category: catalogCategory}
		if err := archive.AddItem(context.Background(), root, item); err != nil {
			return err
		}
		fmt.Printf("Added %s to %s\n", item.Name, root)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <root>",
	Short: "Show the item a root is attributed to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := domain.ParseRoot(args[0])
		if err != nil {
			return err
		}
		item, err := archive.FirstItem(context.Background(), root)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s (%s)\n", root, item.Name, item.Category)
		return nil
	},
}

func init() {
	catalogAddCmd.Flags().StringVar(&catalogCategory, "category", "", "item category")
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
