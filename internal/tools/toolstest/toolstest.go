// Package toolstest drives an in-process MCP server with JSON-RPC messages
// the way a host would, for use in tool package tests.
package toolstest

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Result is the decoded result of a tools/call request.
type Result struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent map[string]any `json:"structuredContent"`
	IsError           bool           `json:"isError"`
}

// Text joins the text contents of the result.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RPCError is a JSON-RPC error returned instead of a result.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tool is one entry of a tools/list result.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Initialize is the result of the initialize handshake.
type Initialize struct {
	ProtocolVersion string `json:"protocolVersion"`
	Instructions    string `json:"instructions"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	Capabilities struct {
		Tools *struct {
			ListChanged bool `json:"listChanged"`
		} `json:"tools"`
	} `json:"capabilities"`
}

var nextID atomic.Int64

// Send issues one JSON-RPC request and decodes its result into result. It
// returns the JSON-RPC error, if any.
func Send(t *testing.T, s *mcpserver.MCPServer, method string, params any, result any) *RPCError {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      nextID.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("marshal %s request: %v", method, err)
	}

	reply, err := json.Marshal(s.HandleMessage(context.Background(), raw))
	if err != nil {
		t.Fatalf("marshal %s response: %v", method, err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(reply, &envelope); err != nil {
		t.Fatalf("decode %s response %s: %v", method, reply, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			t.Fatalf("decode %s result %s: %v", method, envelope.Result, err)
		}
	}
	return nil
}

// Call invokes a tool and fails the test on a JSON-RPC error.
func Call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) Result {
	t.Helper()

	var result Result
	if rpcErr := Send(t, s, "tools/call", map[string]any{"name": name, "arguments": args}, &result); rpcErr != nil {
		t.Fatalf("tools/call %s: JSON-RPC error %d: %s", name, rpcErr.Code, rpcErr.Message)
	}
	return result
}

// ListTools returns the advertised tools.
func ListTools(t *testing.T, s *mcpserver.MCPServer) []Tool {
	t.Helper()

	var result struct {
		Tools []Tool `json:"tools"`
	}
	if rpcErr := Send(t, s, "tools/list", map[string]any{}, &result); rpcErr != nil {
		t.Fatalf("tools/list: JSON-RPC error %d: %s", rpcErr.Code, rpcErr.Message)
	}
	return result.Tools
}

// InitializeServer performs the initialize handshake.
func InitializeServer(t *testing.T, s *mcpserver.MCPServer) Initialize {
	t.Helper()

	var result Initialize
	params := map[string]any{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "toolstest", "version": "1.0.0"},
	}
	if rpcErr := Send(t, s, "initialize", params, &result); rpcErr != nil {
		t.Fatalf("initialize: JSON-RPC error %d: %s", rpcErr.Code, rpcErr.Message)
	}
	return result
}
