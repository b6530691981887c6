// Package generator produces a skill from an MCP server definition: a
// SKILL.md instruction document with a lazily disclosed tool summary and
// token budget, plus the persisted service config the executor re-reads on
// every invocation.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Generator writes the skill artifacts for one service.
type Generator struct {
	service  *config.Service
	dir      string
	progress io.Writer
}

// Opt is a generator construction option
type Opt func(*Generator)

// frontmatter is the YAML header of a SKILL.md document.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// toolSummary is one catalog entry as rendered into SKILL.md.
type toolSummary struct {
	Name        string
	Description string
	Required    []string
}

// skillDoc is the data context for the SKILL.md template.
type skillDoc struct {
	Name        string
	Frontmatter string
	Transport   string
	Budget      Budget
	Tools       []toolSummary
	ExampleCall string
	ExampleName string
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a generator for a service, writing into dir.
func New(service *config.Service, dir string, opt ...Opt) *Generator {
	g := &Generator{
		service:  service,
		dir:      dir,
		progress: io.Discard,
	}
	for _, fn := range opt {
		fn(g)
	}
	return g
}

// WithProgress sets a writer for human-readable progress messages.
func WithProgress(w io.Writer) Opt {
	return func(g *Generator) {
		g.progress = w
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate writes SKILL.md and the persisted service config for the given
// tool catalog. Tools are rendered in catalog order.
func (g *Generator) Generate(_ context.Context, tools []*mcp.Tool) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return err
	}

	skillPath := filepath.Join(g.dir, "SKILL.md")
	doc, err := g.render(tools)
	if err != nil {
		return err
	}
	if err := os.WriteFile(skillPath, doc, 0644); err != nil {
		return err
	}
	fmt.Fprintf(g.progress, "✓ Generated: %s\n", skillPath)

	configPath := filepath.Join(g.dir, config.DefaultFilename)
	if err := g.service.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(g.progress, "✓ Generated: %s\n", configPath)

	return nil
}

// TransportDescription returns the human-readable transport line for a
// service.
func TransportDescription(service *config.Service) string {
	if service.Kind() == config.TransportHTTP {
		return fmt.Sprintf("HTTP (%s)", service.URL)
	}
	return "stdio (local process)"
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (g *Generator) render(tools []*mcp.Tool) ([]byte, error) {
	budget := NewBudget(len(tools))

	// YAML frontmatter
	meta, err := yaml.Marshal(frontmatter{
		Name:        g.service.Name,
		Description: fmt.Sprintf("Dynamic access to the %s MCP server (%d tools)", g.service.Name, len(tools)),
		Version:     "1.0.0",
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]toolSummary, 0, len(tools))
	for _, tool := range tools {
		summaries = append(summaries, toolSummary{
			Name:        tool.Name,
			Description: tool.Description,
			Required:    requiredArguments(tool),
		})
	}

	doc := skillDoc{
		Name:        g.service.Name,
		Frontmatter: string(bytes.TrimSpace(meta)),
		Transport:   TransportDescription(g.service),
		Budget:      budget,
		Tools:       summaries,
	}
	if len(summaries) > 0 {
		doc.ExampleName = summaries[0].Name
		doc.ExampleCall = exampleCall(summaries[0])
	}

	var buf bytes.Buffer
	if err := skillTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// requiredArguments extracts the names of required arguments from a tool's
// input schema, used as a hint in the tool summary. Tools with missing or
// unparsable schemas get no hint.
func requiredArguments(tool *mcp.Tool) []string {
	if len(tool.InputSchema) == 0 {
		return nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(tool.InputSchema, &schema); err != nil {
		return nil
	}
	return schema.Required
}

// exampleCall builds the JSON for a call to the given tool with empty
// placeholder values for its required arguments.
func exampleCall(tool toolSummary) string {
	args := make(map[string]any, len(tool.Required))
	for _, name := range tool.Required {
		args[name] = "value"
	}
	data, err := json.Marshal(map[string]any{
		"tool":      tool.Name,
		"arguments": args,
	})
	if err != nil {
		return ""
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// TEMPLATE

var skillTemplate = template.Must(template.New("SKILL.md").Parse(`---
{{.Frontmatter}}
---

# {{.Name}} Skill

This skill provides dynamic access to the {{.Name}} MCP server without loading all tool definitions into context.

## Transport Type

This skill connects via: **{{.Transport}}**

## Context Efficiency

Traditional MCP approach:
- All {{.Budget.ToolCount}} tools loaded at startup
- Estimated context: {{.Budget.BaselineTokens}} tokens

This skill approach:
- Metadata only: ~{{.Budget.IdleTokens}} tokens
- Full instructions (when used): ~{{.Budget.ActiveTokens}} tokens
- Tool execution: {{.Budget.ExecutingTokens}} tokens (runs externally)

## How This Works

Instead of loading all MCP tool definitions upfront, this skill:
1. Tells you what tools are available (just names and brief descriptions)
2. You decide which tool to call based on the user's request
3. Generate a JSON command to invoke the tool
4. The executor handles the actual MCP communication

## Available Tools

{{range .Tools}}- ` + "`{{.Name}}`" + `: {{if .Description}}{{.Description}}{{else}}No description{{end}}{{if .Required}} (requires: {{range $i, $r := .Required}}{{if $i}}, {{end}}{{$r}}{{end}}){{end}}
{{end}}
## Usage Pattern

When the user's request matches this skill's capabilities:

**Step 1: Identify the right tool** from the list above

**Step 2: Generate a tool call** in this JSON format:

` + "```json" + `
{"tool": "tool_name", "arguments": {"param1": "value1"}}
` + "```" + `

**Step 3: Execute via bash:**

` + "```bash" + `
cd $SKILL_DIR
skill-exec --call 'YOUR_JSON_HERE'
` + "```" + `

IMPORTANT: Replace $SKILL_DIR with the actual discovered path of this skill directory.

## Getting Tool Details

If you need detailed information about a specific tool's parameters:

` + "```bash" + `
cd $SKILL_DIR
skill-exec --describe tool_name
` + "```" + `

This loads ONLY that tool's schema, not all tools.
{{if .ExampleName}}
## Example

` + "```bash" + `
cd $SKILL_DIR
skill-exec --call '{{.ExampleCall}}'
` + "```" + `

Or get the full schema first, then generate the appropriate call:

` + "```bash" + `
cd $SKILL_DIR
skill-exec --describe {{.ExampleName}}
` + "```" + `
{{end}}
## Error Handling

If the executor returns an error:
- Check the tool name is correct
- Verify required arguments are provided
- Ensure the MCP server is accessible

## Performance Notes

Context usage comparison for this skill:

| Scenario | MCP (preload) | Skill (dynamic) |
|----------|---------------|-----------------|
| Idle | {{.Budget.BaselineTokens}} tokens | {{.Budget.IdleTokens}} tokens |
| Active | {{.Budget.BaselineTokens}} tokens | {{.Budget.ActiveTokens}} tokens |
| Executing | {{.Budget.BaselineTokens}} tokens | {{.Budget.ExecutingTokens}} tokens |

Savings: ~{{.Budget.SavingsPercent}}% reduction in typical usage

---

*This skill was auto-generated from an MCP server configuration.*
`))
