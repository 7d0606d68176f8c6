package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rootforge/internal/adapters/report"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
)

// RegisterWriteTools adds the tools that modify the archive to the MCP server.
func RegisterWriteTools(s *server.MCPServer, svc *Service) {
	s.AddTool(cloneTool(), cloneHandler(svc))
}

// --- clone_root ---

func cloneTool() mcp.Tool {
	return mcp.NewTool("clone_root",
		mcp.WithDescription("Copy every model, material, texture, effect and metadata file of a source root onto a destination root in one transaction. Existing modifications of the destination are replaced."),
		mcp.WithString("source",
			mcp.Description("Source root (e.g. equipment/12/top)"),
			mcp.Required(),
		),
		mcp.WithString("destination",
			mcp.Description("Destination root (e.g. equipment/87/top)"),
			mcp.Required(),
		),
		mcp.WithNumber("variant",
			mcp.Description("Expose only this variant of the source on every destination variant. Omit to keep all."),
		),
		mcp.WithString("export_directory",
			mcp.Description("Also write the cloned files and a manifest under this directory"),
		),
	)
}

func cloneHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := parseRootArg(req, "source")
		if err != nil {
			return toolError(err)
		}
		destination, err := parseRootArg(req, "destination")
		if err != nil {
			return toolError(err)
		}

		progress := &stageLog{}
		cmd := commands.NewCloneRootCommand(svc.Archive, svc.Codecs, domain.Root{Info: source}, domain.Root{Info: destination}, svc.SourceApplication)
		cmd.VariantIndex = req.GetInt("variant", -1)
		cmd.ExportDirectory = req.GetString("export_directory", "")
		cmd.Catalog = svc.Catalog
		cmd.Exporter = svc.Exporter
		cmd.Progress = progress

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(report.FormatClone(result, progress.stages)), nil
	}
}

// stageLog collects progress labels for the tool result
type stageLog struct {
	stages []string
}

func (l *stageLog) Report(stage string) {
	l.stages = append(l.stages, stage)
}
