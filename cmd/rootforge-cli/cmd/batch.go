package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rootforge/internal/adapters/report"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

var (
	batchImported string
	batchQuiet    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <source:destination[:variant]>...",
	Short: "Clone several roots and reset the moved sources",
	Long: `Run several clones in one transaction, then restore every source file
that was moved to a different path to its state before the batch.

The files listed by --imported (a glob over ledger paths) are treated as
freshly imported modifications: their pre-batch state is the unmodified
base file. Every other source file is restored to its current ledger state.

Examples:
  rootforge-cli batch equipment/12/top:equipment/87/top
  rootforge-cli batch equipment/12/top:equipment/87/top:1 equipment/12/glv:equipment/87/glv \
    --imported 'chara/equipment/e0012/**'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conversions := make([]commands.Conversion, 0, len(args))
		for _, arg := range args {
			conv, err := parseConversion(arg)
			if err != nil {
				return err
			}
			conversions = append(conversions, conv)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		imported := domain.NewPathSet()
		if batchImported != "" {
			mods, err := report.ListMods(ctx, archive, batchImported, false)
			if err != nil {
				return err
			}
			for _, m := range mods {
				imported.Add(m.Path)
			}
		}

		snapshot, err := snapshotSources(ctx, conversions, imported)
		if err != nil {
			return err
		}

		batch := commands.NewCloneAndResetBatchCommand(archive, codecs(), conversions, imported, snapshot, cfg.SourceApplication)
		batch.Catalog = archive
		batch.Progress = stderrProgress{quiet: batchQuiet}

		result, err := batch.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Print(report.FormatBatch(result))
		return nil
	},
}

// parseConversion parses source:destination[:variant]
func parseConversion(arg string) (commands.Conversion, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return commands.Conversion{}, fmt.Errorf("invalid conversion %q: expected source:destination[:variant]", arg)
	}
	src, err := domain.ParseRoot(parts[0])
	if err != nil {
		return commands.Conversion{}, err
	}
	dst, err := domain.ParseRoot(parts[1])
	if err != nil {
		return commands.Conversion{}, err
	}
	conv := commands.Conversion{
		Source:       domain.Root{Info: src},
		Destination:  domain.Root{Info: dst},
		VariantIndex: -1,
	}
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 0 {
			return commands.Conversion{}, fmt.Errorf("invalid conversion %q: variant must be a non-negative number", arg)
		}
		conv.VariantIndex = n
	}
	return conv, nil
}

// snapshotSources records the pre-batch state of every file a conversion may
// move: the root file and everything an inspection of each source finds,
// plus the import set.
// Imported files snapshot to their unmodified state, the rest to the ledger.
func snapshotSources(ctx context.Context, conversions []commands.Conversion, imported domain.PathSet) (map[string]domain.LedgerSnapshot, error) {
	paths := domain.NewPathSet()
	for _, conv := range conversions {
		inspect := commands.NewInspectRootCommand(archive, codecs(), conv.Source)
		inspect.Catalog = archive
		res, err := inspect.Execute(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", conv.Source.Info, err)
		}
		candidates := append([]string{conv.Source.Info.RootFile()}, res.Missing...)
		for _, f := range res.Files {
			candidates = append(candidates, f.Path)
		}
		for _, p := range candidates {
			if !imported.Has(p) {
				paths.Add(p)
			}
		}
	}

	tx, err := archive.BeginTx(ctx, ports.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot, err := commands.SnapshotLedger(ctx, tx, paths.Sorted())
	if err != nil {
		return nil, err
	}
	baseline, err := commands.SnapshotBaseline(ctx, tx, imported.Sorted())
	if err != nil {
		return nil, err
	}
	for p, s := range baseline {
		snapshot[p] = s
	}
	return snapshot, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchImported, "imported", "", "glob over ledger paths that were imported as part of this batch")
	batchCmd.Flags().BoolVarP(&batchQuiet, "quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(batchCmd)
}
