package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"rootforge/internal/adapters/editor"
	"rootforge/internal/adapters/filesystem"
	"rootforge/internal/adapters/gltfmodel"
	"rootforge/internal/adapters/jsonmtrl"
	"rootforge/internal/adapters/metafile"
	"rootforge/internal/adapters/sqlite"
	"rootforge/internal/adapters/texture"
	"rootforge/internal/adapters/tui"
	"rootforge/internal/adapters/tui/views"
	"rootforge/internal/application/commands"
	"rootforge/internal/config"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Log to a file; the terminal belongs to the TUI
	logFile, err := tea.LogToFile(config.ExpandHome("~/.local/state/rootforge.log"), "rootforge")
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	cfg.ApplyLogLevel()

	// Initialize adapters
	archive := sqlite.NewArchive()
	if err := archive.Open(cfg.Archive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	exportDir := config.ExpandHome(cfg.ExportDirectory)
	cloner := tui.NewCommandCloner(tui.CloneOptions{
		Archive: archive,
		Codecs: commands.Codecs{
			Models:    gltfmodel.NewCodec(),
			Materials: jsonmtrl.NewCodec(),
			Metadata:  metafile.NewStore(),
			Textures:  texture.Inspector{},
		},
		Catalog:           archive,
		Exporter:          filesystem.NewExporter(),
		ExportDirectory:   exportDir,
		SourceApplication: cfg.SourceApplication,
	})

	// Create and run TUI app
	app := tui.NewApp(cloner, views.CloneRequest{Variant: -1}, editor.NewOpener(cfg.Editor), exportDir)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
