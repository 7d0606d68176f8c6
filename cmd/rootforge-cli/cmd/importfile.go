package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importGlob string

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Import base game files from a directory tree",
	Long: `Store every file under directory as unmodified base content. The path
of each file relative to directory becomes its archive path, so the tree
must start at chara/. No ledger entries are created.

Examples:
  rootforge-cli import ./extracted
  rootforge-cli import ./extracted --glob 'chara/equipment/e0012/**'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dir := args[0]

		if importGlob != "" && !doublestar.ValidatePattern(importGlob) {
			return fmt.Errorf("invalid glob: %s", importGlob)
		}

		var files int
		var total uint64
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			archivePath := strings.ToLower(filepath.ToSlash(rel))
			if !strings.HasPrefix(archivePath, "chara/") {
				log.WithField("path", archivePath).Debug("skipping file outside chara/")
				return nil
			}
			if importGlob != "" {
				if ok, _ := doublestar.Match(importGlob, archivePath); !ok {
					return nil
				}
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if _, err := archive.ImportFile(ctx, archivePath, data); err != nil {
				return err
			}
			files++
			total += uint64(len(data))
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d files (%s)\n", files, humanize.Bytes(total))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importGlob, "glob", "g", "", "only import archive paths matching this glob")
	rootCmd.AddCommand(importCmd)
}
