// Package mcp provides a Model Context Protocol server over an exported
// diary dump. It exposes read-only query tools that any MCP-capable agent
// can use to browse a previously exported diary.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/icex/internal/diary"
)

// Source is the exported dump a server answers from. Records stay in dump
// order, which is the service's newest-first page order.
type Source struct {
	Path    string
	Records []*diary.Record
}

// LoadSource reads a structured dump written by a previous export run.
func LoadSource(path string) (*Source, error) {
	records, err := diary.ReadDump(path)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, Records: records}, nil
}

// NewServer creates an MCP server with all icex tools registered.
func NewServer(version string, source *Source) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "icex",
		Version: version,
	}, nil)
	registerTools(server, source)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools. Every icex
// tool is read-only; the server never touches the service or the dump.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// registerTools adds all icex tools to the server.
func registerTools(server *mcp.Server, source *Source) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query",
		Description: "Search diary entries in the exported dump. Supports last N, a from/to day range (YYYY-MM-DD), and case-insensitive text matching.",
		Annotations: readOnlyAnnotations(),
	}, handleQuery(source))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show",
		Description: "Display a single diary entry by ID, or the most recent entry with latest=true.",
		Annotations: readOnlyAnnotations(),
	}, handleShow(source))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Summarize the dump: entry count, distinct days, date range, and how many entries have no derivable date.",
		Annotations: readOnlyAnnotations(),
	}, handleStats(source))
}
