// Package ui_tools provides the MCP tools of the UI component library
// provider. The library is not wired to a real component registry yet, so
// list_components answers with a tagged placeholder.
package ui_tools
