package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rootforge/internal/adapters/editor"
	"rootforge/internal/adapters/filesystem"
	"rootforge/internal/adapters/report"
	"rootforge/internal/adapters/tui"
	"rootforge/internal/adapters/tui/views"
	"rootforge/internal/application/commands"
	"rootforge/internal/config"
	"rootforge/internal/domain"
)

var (
	cloneVariant int
	cloneExport  string
	cloneCopy    bool
	cloneEdit    bool
	cloneTUI     bool
	cloneQuiet   bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone <source-root> <destination-root>",
	Short: "Clone a root onto another root",
	Long: `Copy every model, material, texture, effect and metadata file of the
source root onto the destination root in one transaction. Existing
modifications of the destination root are removed first.

Roots are written as type/id[/subtype/subid][/slot] or as an archive path.

Examples:
  rootforge-cli clone equipment/12/top equipment/87/top
  rootforge-cli clone equipment/12/top equipment/87/top --variant 2
  rootforge-cli clone human/101/hair/5 human/101/hair/9 --export ./out --edit
  rootforge-cli clone equipment/12/top equipment/87/top --tui`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := domain.ParseRoot(args[0])
		if err != nil {
			return err
		}
		dst, err := domain.ParseRoot(args[1])
		if err != nil {
			return err
		}

		exportDir := cloneExport
		if exportDir == "" {
			exportDir = cfg.ExportDirectory
		}
		exportDir = config.ExpandHome(exportDir)

		if cloneTUI {
			cloner := tui.NewCommandCloner(tui.CloneOptions{
				Archive:           archive,
				Codecs:            codecs(),
				Catalog:           archive,
				Exporter:          filesystem.NewExporter(),
				ExportDirectory:   exportDir,
				SourceApplication: cfg.SourceApplication,
			})
			request := views.CloneRequest{Source: src, Destination: dst, Variant: cloneVariant}
			app := tui.NewApp(cloner, request, editor.NewOpener(cfg.Editor), exportDir)
			_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		clone := commands.NewCloneRootCommand(archive, codecs(), domain.Root{Info: src}, domain.Root{Info: dst}, cfg.SourceApplication)
		clone.VariantIndex = cloneVariant
		clone.Catalog = archive
		clone.Exporter = filesystem.NewExporter()
		clone.ExportDirectory = exportDir
		clone.Progress = stderrProgress{quiet: cloneQuiet}

		result, err := clone.Execute(ctx)
		if result == nil {
			return err
		}
		fmt.Print(report.FormatClone(result, nil))
		if err != nil {
			return err
		}

		if cloneCopy {
			if err := clipboard.WriteAll(report.FormatFileMap(result.Files)); err != nil {
				return fmt.Errorf("failed to copy file map: %w", err)
			}
			fmt.Fprintln(os.Stderr, "File map copied to clipboard")
		}
		if cloneEdit {
			if exportDir == "" {
				return fmt.Errorf("--edit needs an export directory")
			}
			return editor.NewOpener(cfg.Editor).OpenFile(filepath.Join(exportDir, filesystem.ManifestName))
		}
		return nil
	},
}

func init() {
	cloneCmd.Flags().IntVarP(&cloneVariant, "variant", "v", -1, "expose only this source variant on every destination variant")
	cloneCmd.Flags().StringVarP(&cloneExport, "export", "e", "", "also write the cloned files and a manifest under this directory")
	cloneCmd.Flags().BoolVarP(&cloneCopy, "copy", "c", false, "copy the file map to the clipboard")
	cloneCmd.Flags().BoolVar(&cloneEdit, "edit", false, "open the export manifest in $EDITOR")
	cloneCmd.Flags().BoolVar(&cloneTUI, "tui", false, "review and run the clone interactively")
	cloneCmd.Flags().BoolVarP(&cloneQuiet, "quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(cloneCmd)
}
