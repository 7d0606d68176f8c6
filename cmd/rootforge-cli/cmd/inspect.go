package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rootforge/internal/adapters/report"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <root>",
	Short: "Show a root's metadata and the files a clone would carry",
	Long: `Show a root's variants and per-race models, then every file a clone of
the root would copy. Modified files are marked with *, materials a model
references but the archive lacks are marked with !.

Example:
  rootforge-cli inspect equipment/12/top`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := domain.ParseRoot(args[0])
		if err != nil {
			return err
		}

		inspect := commands.NewInspectRootCommand(archive, codecs(), domain.Root{Info: root})
		inspect.Catalog = archive
		result, err := inspect.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Print(report.FormatInspection(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
