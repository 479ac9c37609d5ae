package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/server"
)

// RejectionReasonSchema labels calls refused by input schema validation.
const RejectionReasonSchema = "schema"

// schemaBaseURI prefixes the location input schemas are compiled under.
const schemaBaseURI = "mcp://tools/"

// CompileInputSchema compiles the input schema a tool advertises.
func CompileInputSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	raw := tool.RawInputSchema
	if len(raw) == 0 {
		var err error
		raw, err = json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema of %s: %w", tool.Name, err)
		}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal input schema of %s: %w", tool.Name, err)
	}

	// Absolute, so rejection messages never carry the working directory.
	location := schemaBaseURI + tool.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(location, doc); err != nil {
		return nil, fmt.Errorf("add input schema of %s: %w", tool.Name, err)
	}
	schema, err := c.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("compile input schema of %s: %w", tool.Name, err)
	}
	return schema, nil
}

// ValidatedToolHandler rejects calls whose arguments do not satisfy the
// tool's input schema before handler runs. Rejections are tool errors, not
// protocol errors.
func ValidatedToolHandler(tool mcp.Tool, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) (mcpserver.ToolHandlerFunc, error) {
	schema, err := CompileInputSchema(tool)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		if err := schema.Validate(args); err != nil {
			if metrics := sc.Metrics(); metrics != nil {
				metrics.RecordToolRejection(ctx, tool.Name, RejectionReasonSchema)
			}
			logging.WithTool(slog.Default(), tool.Name).Debug("tool arguments rejected", logging.Err(err))
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %v", tool.Name, err)), nil
		}

		return handler(ctx, request)
	}, nil
}

// AddTool registers tool on s behind schema validation and instrumentation.
// serviceName and operation may be empty for tools that do not call a
// Google API.
func AddTool(
	s *mcpserver.MCPServer,
	sc *server.ServerContext,
	tool mcp.Tool,
	serviceName, operation string,
	handler mcpserver.ToolHandlerFunc,
) error {
	validated, err := ValidatedToolHandler(tool, sc, handler)
	if err != nil {
		return err
	}

	if serviceName == "" {
		s.AddTool(tool, InstrumentedToolHandler(tool.Name, sc, validated))
		return nil
	}
	s.AddTool(tool, InstrumentedToolHandlerWithService(tool.Name, serviceName, operation, sc, validated))
	return nil
}
