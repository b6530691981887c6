package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	config "github.com/mutablelogic/go-skill/pkg/config"
	invoker "github.com/mutablelogic/go-skill/pkg/invoker"
	session "github.com/mutablelogic/go-skill/pkg/mcp/session"
	version "github.com/mutablelogic/go-skill/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type CLI struct {
	// Operations - exactly one is required
	List     bool   `name:"list" xor:"op" required:"" help:"List all tools"`
	Describe string `name:"describe" xor:"op" placeholder:"NAME" help:"Get detailed schema for a tool"`
	Call     string `name:"call" xor:"op" placeholder:"JSON" help:"JSON tool call to execute"`

	// Options
	Config  string `name:"config" default:"mcp-config.json" type:"path" help:"Path to the persisted MCP service config"`
	Debug   bool   `name:"debug" help:"Enable debug output"`
	Verbose bool   `name:"verbose" help:"Enable verbose output"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func main() {
	cli := CLI{}
	kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("MCP skill executor - dynamic communication with an MCP server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Perform the single operation, then exit. All errors surface here,
	// on stderr, with a non-zero exit code.
	err := run(ctx, &cli)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func run(ctx context.Context, cli *CLI) error {
	// The service config is re-read on every invocation
	service, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	opts := []session.Opt{
		session.WithClientInfo(execName(), version.Version()),
	}
	if cli.Debug {
		opts = append(opts, session.WithClientOpts(client.OptTrace(os.Stderr, cli.Verbose)))
	}

	return invoker.Run(ctx, service, invoker.Request{
		List:     cli.List,
		Describe: cli.Describe,
		Call:     cli.Call,
	}, os.Stdout, opts...)
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
