package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rootforge/internal/adapters/report"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// Service is what the tools operate on
type Service struct {
	Archive           ports.Archive
	Catalog           ports.ItemCatalog
	Codecs            commands.Codecs
	Exporter          ports.Exporter
	SourceApplication string
}

// RegisterReadTools adds all read-only archive tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc *Service) {
	s.AddTool(inspectTool(), inspectHandler(svc))
	s.AddTool(listModsTool(), listModsHandler(svc))
}

// --- inspect_root ---

func inspectTool() mcp.Tool {
	return mcp.NewTool("inspect_root",
		mcp.WithDescription("Show a root's variants, per-race model flags and the files a clone of it would carry."),
		mcp.WithString("root",
			mcp.Description("Root as type/id[/subtype/subid][/slot] (e.g. equipment/12/top, human/101/hair/7/hir) or an archive path under chara/"),
			mcp.Required(),
		),
	)
}

func inspectHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := parseRootArg(req, "root")
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewInspectRootCommand(svc.Archive, svc.Codecs, domain.Root{Info: root})
		cmd.Catalog = svc.Catalog
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(report.FormatInspection(result)), nil
	}
}

// --- list_mods ---

func listModsTool() mcp.Tool {
	return mcp.NewTool("list_mods",
		mcp.WithDescription("List ledger entries, optionally filtered by a glob such as chara/equipment/e0087/**."),
		mcp.WithString("glob",
			mcp.Description("Doublestar glob over archive paths. Omit to list every entry."),
		),
		mcp.WithBoolean("include_internal",
			mcp.Description("Include placement table entries written by the archive itself"),
		),
	)
}

func listModsHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		glob := req.GetString("glob", "")
		if glob != "" && !doublestar.ValidatePattern(glob) {
			return toolError(fmt.Errorf("invalid glob: %s", glob))
		}

		mods, err := report.ListMods(ctx, svc.Archive, glob, req.GetBool("include_internal", false))
		if err != nil {
			return toolError(err)
		}
		return formatEntities(mods, report.FormatMod)
	}
}

// --- helpers ---

func parseRootArg(req mcp.CallToolRequest, name string) (domain.RootInfo, error) {
	s := req.GetString(name, "")
	if s == "" {
		return domain.RootInfo{}, fmt.Errorf("%s is required", name)
	}
	return domain.ParseRoot(s)
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
