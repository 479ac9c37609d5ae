// Package provider describes the tool providers the binary can serve and
// builds the MCP server for one of them.
package provider

import (
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/resources"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/calendar_tools"
	"github.com/teemow/calendar-mcp/internal/tools/ui_tools"
)

// ServerName is reported to hosts in the initialize handshake.
const ServerName = "calendar-mcp"

// Provider names.
const (
	Calendar = "calendar"
	UI       = "ui"
)

// Descriptor is the static answer to a capability query: what the server is,
// how hosts should use it, and the tools it advertises.
type Descriptor struct {
	Provider     string     `json:"provider"`
	ServerName   string     `json:"serverName"`
	Version      string     `json:"version"`
	Instructions string     `json:"instructions"`
	ToolsEnabled bool       `json:"toolsEnabled"`
	Tools        []mcp.Tool `json:"tools"`
	Resources    []string   `json:"resources,omitempty"`
}

type definition struct {
	instructions string
	tools        func() []mcp.Tool
	register     func(*mcpserver.MCPServer, *server.ServerContext) error

	resources         []string
	registerResources func(*mcpserver.MCPServer, *server.ServerContext) error
}

var definitions = map[string]definition{
	Calendar: {
		instructions: "Google Calendar MCP",
		tools:        calendar_tools.Tools,
		register:     calendar_tools.RegisterCalendarTools,

		resources:         []string{resources.CalendarConfigURI},
		registerResources: resources.RegisterCalendarResources,
	},
	UI: {
		instructions: "UI component library MCP",
		tools:        ui_tools.Tools,
		register:     ui_tools.RegisterUITools,
	},
}

// Names returns the known provider names.
func Names() []string {
	return []string{Calendar, UI}
}

// Describe returns the descriptor of the named provider.
func Describe(name, version string) (Descriptor, error) {
	def, ok := definitions[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown provider %q, must be one of: %s, %s", name, Calendar, UI)
	}

	return Descriptor{
		Provider:     name,
		ServerName:   ServerName,
		Version:      version,
		Instructions: def.instructions,
		ToolsEnabled: true,
		Tools:        def.tools(),
		Resources:    slices.Clone(def.resources),
	}, nil
}

// NewMCPServer builds an MCP server announcing d and registers d's tools
// against sc.
func NewMCPServer(d Descriptor, sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	def, ok := definitions[d.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", d.Provider)
	}

	opts := []mcpserver.ServerOption{
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithInstructions(d.Instructions),
		mcpserver.WithRecovery(),
	}
	if def.registerResources != nil {
		opts = append(opts, mcpserver.WithResourceCapabilities(false, false))
	}
	s := mcpserver.NewMCPServer(d.ServerName, d.Version, opts...)

	if err := def.register(s, sc); err != nil {
		return nil, fmt.Errorf("failed to register %s tools: %w", d.Provider, err)
	}
	if def.registerResources != nil {
		if err := def.registerResources(s, sc); err != nil {
			return nil, fmt.Errorf("failed to register %s resources: %w", d.Provider, err)
		}
	}
	return s, nil
}
