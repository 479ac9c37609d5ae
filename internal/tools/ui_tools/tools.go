package ui_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

// ToolListComponents is the only tool of the UI provider.
const ToolListComponents = "list_components"

// placeholderComponents is what list_components answers until a component
// registry exists.
var placeholderComponents = []string{"Button", "Card"}

// Tools returns the static tool catalog of the UI provider.
func Tools() []mcp.Tool {
	return []mcp.Tool{listComponentsTool()}
}

func listComponentsTool() mcp.Tool {
	return mcp.NewTool(ToolListComponents,
		mcp.WithDescription("List the available UI components"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// RegisterUITools registers the UI tools with the MCP server
func RegisterUITools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := common.AddTool(s, sc, listComponentsTool(), "", "", handleListComponents); err != nil {
		return fmt.Errorf("failed to register %s: %w", ToolListComponents, err)
	}
	return nil
}

func handleListComponents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	components := append([]string(nil), placeholderComponents...)

	return common.NotImplementedResult(
		"Placeholder components: "+strings.Join(components, ", "),
		map[string]any{"components": components},
	), nil
}
