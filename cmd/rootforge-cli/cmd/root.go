package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rootforge/internal/adapters/gltfmodel"
	"rootforge/internal/adapters/jsonmtrl"
	"rootforge/internal/adapters/metafile"
	"rootforge/internal/adapters/sqlite"
	"rootforge/internal/adapters/texture"
	"rootforge/internal/application/commands"
	"rootforge/internal/config"
)

var (
	configPath  string
	archivePath string
	logLevel    string

	cfg     *config.Config
	archive *sqlite.Archive
)

var rootCmd = &cobra.Command{
	Use:   "rootforge-cli",
	Short: "CLI for cloning item roots inside an asset archive",
	Long: `rootforge-cli copies the models, materials, textures, effects and
metadata of one item root onto another inside a single archive transaction.

It provides commands to clone and batch-convert roots, inspect what a clone
would carry, list the modification ledger, and manage partition locks and
the item catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if cmd.Flags().Changed("archive") {
			cfg.Archive = archivePath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		cfg.ApplyLogLevel()

		archive = sqlite.NewArchive()
		if err := archive.Open(cfg.Archive); err != nil {
			return err
		}
		log.WithField("archive", archive.Path()).Debug("archive opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if archive == nil {
			return nil
		}
		return archive.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	log.SetOutput(os.Stderr)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&archivePath, "archive", "a", config.ArchivePath(), "path to the archive database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
}

// codecs returns the format collaborators every command reads and writes through
func codecs() commands.Codecs {
	return commands.Codecs{
		Models:    gltfmodel.NewCodec(),
		Materials: jsonmtrl.NewCodec(),
		Metadata:  metafile.NewStore(),
		Textures:  texture.Inspector{},
	}
}

// stderrProgress prints stage labels as they are reported
type stderrProgress struct {
	quiet bool
}

func (p stderrProgress) Report(stage string) {
	if !p.quiet {
		fmt.Fprintln(os.Stderr, stage)
	}
}
