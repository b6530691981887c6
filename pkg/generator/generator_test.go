package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	// Packages
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	assert "github.com/stretchr/testify/assert"
)

func testCatalog(n int) []*mcp.Tool {
	tools := make([]*mcp.Tool, 0, n)
	for i := 0; i < n; i++ {
		tools = append(tools, &mcp.Tool{
			Name:        "tool_" + string(rune('a'+i)),
			Description: "Test tool",
		})
	}
	return tools
}

func Test_generator_001(t *testing.T) {
	assert := assert.New(t)

	service := &config.Service{
		Name:    "weather",
		Command: "wx-server",
		Args:    []string{"--mode", "json"},
	}
	dir := t.TempDir()

	gen := New(service, dir)
	assert.NoError(gen.Generate(context.Background(), testCatalog(12)))

	// SKILL.md carries the transport line, the catalog and the budget
	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	assert.NoError(err)
	doc := string(data)
	assert.True(strings.HasPrefix(doc, "---\nname: weather\n"))
	assert.Contains(doc, "Dynamic access to the weather MCP server (12 tools)")
	assert.Contains(doc, "**stdio (local process)**")
	assert.Contains(doc, "Estimated context: 6000 tokens")
	assert.Contains(doc, "| Idle | 6000 tokens | 100 tokens |")
	assert.Contains(doc, "| Active | 6000 tokens | 5000 tokens |")
	assert.Contains(doc, "| Executing | 6000 tokens | 0 tokens |")
	assert.Contains(doc, "Savings: ~17% reduction")
	assert.Contains(doc, "- `tool_a`: Test tool")

	// The persisted config is equal in every field to the original
	loaded, err := config.Load(filepath.Join(dir, config.DefaultFilename))
	assert.NoError(err)
	assert.Equal(service, loaded)
}

func Test_generator_002(t *testing.T) {
	assert := assert.New(t)

	// Negative savings are written out, not suppressed
	service := &config.Service{Name: "tiny", URL: "https://example.com/mcp"}
	dir := t.TempDir()

	gen := New(service, dir)
	assert.NoError(gen.Generate(context.Background(), testCatalog(5)))

	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	assert.NoError(err)
	doc := string(data)
	assert.Contains(doc, "**HTTP (https://example.com/mcp)**")
	assert.Contains(doc, "Savings: ~-100% reduction")
}

func Test_generator_003(t *testing.T) {
	assert := assert.New(t)

	// Required arguments from the input schema appear as hints, and the
	// first tool seeds the example call
	service := &config.Service{Name: "geo", Command: "geo-server"}
	dir := t.TempDir()

	tools := []*mcp.Tool{
		{
			Name:        "lookup",
			Description: "Look up a city",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}},"required":["city"]}`),
		},
		{Name: "ping", InputSchema: json.RawMessage(`not a schema`)},
	}
	gen := New(service, dir)
	assert.NoError(gen.Generate(context.Background(), tools))

	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	assert.NoError(err)
	doc := string(data)
	assert.Contains(doc, "- `lookup`: Look up a city (requires: city)")
	assert.Contains(doc, "- `ping`: No description")
	assert.Contains(doc, `skill-exec --call '{"arguments":{"city":"value"},"tool":"lookup"}'`)
	assert.Contains(doc, "skill-exec --describe lookup")
}

func Test_generator_004(t *testing.T) {
	assert := assert.New(t)

	// Placeholder catalog keeps generation possible before the server is live
	tools := PlaceholderCatalog()
	assert.Len(tools, 1)
	assert.Equal("example_tool", tools[0].Name)
	assert.Equal([]string{"param1"}, requiredArguments(tools[0]))
}
