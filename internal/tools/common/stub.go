package common

import (
	"maps"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// NotImplementedPrefix starts the text of every stub result.
	NotImplementedPrefix = "[not implemented] "

	// StatusNotImplemented is the structured status of a stub result.
	StatusNotImplemented = "not_implemented"
)

// NotImplementedResult builds a successful result that is marked as a stub
// both in its text and in its structured content. fields are merged into the
// structured content; the status key always wins.
func NotImplementedResult(message string, fields map[string]any) *mcp.CallToolResult {
	structured := make(map[string]any, len(fields)+1)
	maps.Copy(structured, fields)
	structured["status"] = StatusNotImplemented

	return mcp.NewToolResultStructured(structured, NotImplementedPrefix+message)
}

// IsStubResult reports whether result was built by NotImplementedResult.
func IsStubResult(result *mcp.CallToolResult) bool {
	if result == nil {
		return false
	}
	structured, ok := result.StructuredContent.(map[string]any)
	return ok && structured["status"] == StatusNotImplemented
}

// ResultText returns the text of the first text content in result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			return text.Text
		}
	}
	return ""
}
