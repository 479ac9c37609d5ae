package common

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/calendar-mcp/internal/server"
)

// FieldReader is implemented by argument structs that can also be filled
// one named argument at a time.
type FieldReader interface {
	ReadFields(request mcp.CallToolRequest)
}

// ReadArguments fills dst from the request using the given style. With
// ArgumentStyleStruct the whole argument object is decoded into dst via its
// json tags; with ArgumentStyleFields dst reads each field itself. Both
// styles yield the same values for well-formed requests.
func ReadArguments(style server.ArgumentStyle, request mcp.CallToolRequest, dst FieldReader) error {
	if style == server.ArgumentStyleFields {
		dst.ReadFields(request)
		return nil
	}

	if err := request.BindArguments(dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
