package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"rootforge/internal/adapters/filesystem"
	"rootforge/internal/adapters/gltfmodel"
	"rootforge/internal/adapters/jsonmtrl"
	mcpadapter "rootforge/internal/adapters/mcp"
	"rootforge/internal/adapters/metafile"
	"rootforge/internal/adapters/sqlite"
	"rootforge/internal/adapters/texture"
	"rootforge/internal/application/commands"
	"rootforge/internal/config"
	"rootforge/internal/metrics"
)

func main() {
	configFlag := flag.String("config", config.Path(), "path to the config file")
	archiveFlag := flag.String("archive", "", "path to the archive database (overrides the config)")
	metricsFlag := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("rootforge-mcp: %v", err)
	}
	if *archiveFlag != "" {
		cfg.Archive = *archiveFlag
	}
	if *metricsFlag != "" {
		cfg.MetricsAddr = *metricsFlag
	}
	cfg.ApplyLogLevel()

	archive := sqlite.NewArchive()
	if err := archive.Open(cfg.Archive); err != nil {
		log.Fatalf("rootforge-mcp: %v", err)
	}
	defer archive.Close()

	if cfg.MetricsAddr != "" {
		prometheus.MustRegister(metrics.CloneCollectors()...)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.WithField("err", err).Error("metrics server stopped")
			}
		}()
	}

	mcpServer := server.NewMCPServer(
		"rootforge-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	svc := &mcpadapter.Service{
		Archive: archive,
		Catalog: archive,
		Codecs: commands.Codecs{
			Models:    gltfmodel.NewCodec(),
			Materials: jsonmtrl.NewCodec(),
			Metadata:  metafile.NewStore(),
			Textures:  texture.Inspector{},
		},
		Exporter:          filesystem.NewExporter(),
		SourceApplication: cfg.SourceApplication,
	}
	mcpadapter.RegisterReadTools(mcpServer, svc)
	mcpadapter.RegisterWriteTools(mcpServer, svc)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("rootforge-mcp: %v", err)
	}
}
