package generator

import (
	"context"
	"encoding/json"

	// Packages
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	session "github.com/mutablelogic/go-skill/pkg/mcp/session"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// FetchCatalog opens one session to the service and lists its tools. When
// the server is unreachable it returns a single-entry placeholder catalog
// together with the error, so a skill can still be generated before the
// server is live; the preview is then inaccurate and the caller should
// report the error.
func FetchCatalog(ctx context.Context, service *config.Service, opts ...session.Opt) ([]*mcp.Tool, error) {
	sess, err := session.New(ctx, service, opts...)
	if err != nil {
		return PlaceholderCatalog(), err
	}
	defer sess.Close()

	tools, err := sess.ListTools(ctx)
	if err != nil {
		return PlaceholderCatalog(), err
	}
	return tools, nil
}

// PlaceholderCatalog returns the catalog used when a server cannot be
// introspected at generation time.
func PlaceholderCatalog() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "example_tool",
			Description: "An example tool from the MCP server",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"param1":{"type":"string","description":"First parameter"}},"required":["param1"]}`),
		},
	}
}
