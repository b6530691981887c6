package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	skill "github.com/mutablelogic/go-skill"
	config "github.com/mutablelogic/go-skill/pkg/config"
	generator "github.com/mutablelogic/go-skill/pkg/generator"
	session "github.com/mutablelogic/go-skill/pkg/mcp/session"
	version "github.com/mutablelogic/go-skill/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// Private
	ctx      context.Context
	execName string
}

type CLI struct {
	Globals

	// Commands
	Generate GenerateCommand `cmd:"" help:"Generate skill(s) from an MCP server config"`
	Version  VersionCommand  `cmd:"" help:"Print version information"`
}

type GenerateCommand struct {
	McpConfig string `name:"mcp-config" required:"" type:"path" help:"Path to MCP config JSON (single or mcpServers format)"`
	OutputDir string `name:"output-dir" required:"" type:"path" help:"Output directory for generated skill(s)"`
	Server    string `name:"server" help:"Specific server name to convert (for mcpServers format)"`
}

type VersionCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func main() {
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Convert MCP server(s) to skill(s) with dynamic tool invocation"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()

	// Run the selected command
	cmd.FatalIfErrorf(cmd.Run(&cli.Globals))
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *GenerateCommand) Run(g *Globals) error {
	data, err := os.ReadFile(cmd.McpConfig)
	if errors.Is(err, fs.ErrNotExist) {
		return skill.ErrConfigNotFound.With(cmd.McpConfig)
	} else if err != nil {
		return err
	}

	// Normalize the definition into service records
	services, err := config.Parse(data, cmd.Server)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		if cmd.Server != "" {
			return skill.ErrNotFound.Withf("server %q not found in config", cmd.Server)
		}
		return skill.ErrNotFound.With("no servers found in config")
	}

	// Generate one skill directory per service
	for _, service := range services {
		if service.Name == "" {
			service.Name = "unnamed-mcp-server"
		}
		fmt.Fprintf(os.Stderr, "Generating skill for MCP server: %s\n", service.Name)

		tools, err := generator.FetchCatalog(g.ctx, service, g.sessionOpts()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not introspect %q (%v), using placeholder catalog\n", service.Name, err)
		}

		dir := filepath.Join(cmd.OutputDir, service.Name)
		gen := generator.New(service, dir, generator.WithProgress(os.Stderr))
		if err := gen.Generate(g.ctx, tools); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Tools available: %d\n", len(tools))
	}

	fmt.Fprintf(os.Stderr, "✓ Generated %d skill(s)\n", len(services))
	return nil
}

func (cmd *VersionCommand) Run(g *Globals) error {
	fmt.Println(version.String(g.execName))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (g *Globals) sessionOpts() []session.Opt {
	opts := []session.Opt{
		session.WithClientInfo(g.execName, version.Version()),
	}
	if g.Debug {
		opts = append(opts, session.WithClientOpts(client.OptTrace(os.Stderr, g.Verbose)))
	}
	return opts
}

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}
