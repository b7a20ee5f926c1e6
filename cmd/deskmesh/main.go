// Command deskmesh runs the customer support agent mesh: the MCP tool
// server, the worker agents, and the orchestrator, plus client commands
// to query a running mesh.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskmesh/deskmesh/pkg/config"
	"github.com/deskmesh/deskmesh/pkg/telemetry"
)

const version = "1.0.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Timeout    time.Duration
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	switch args[0] {
	case "serve":
		runServe(ctx, global, cfg, args[1:])
	case "ask":
		runAsk(ctx, global, cfg, args[1:])
	case "agents":
		runAgents(ctx, global, cfg)
	case "init":
		runInit(args[1:])
	case "version":
		fmt.Println("deskmesh " + version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	fs := flag.NewFlagSet("deskmesh", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var global globalFlags
	fs.StringVar(&global.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&global.JSON, "json", false, "print machine-readable output")
	fs.DurationVar(&global.Timeout, "timeout", 60*time.Second, "overall command timeout")
	fs.BoolVar(&global.Help, "help", false, "show usage")
	if err := fs.Parse(args); err != nil {
		return global, nil, err
	}
	return global, fs.Args(), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: deskmesh [flags] <command>

Commands:
  serve tools          run the MCP tool server over the support database
  serve agents         run the customer data and support worker agents
  serve orchestrator   run the orchestrator A2A endpoint
  serve all            run the whole mesh in one process
  ask <query>          send a query through the orchestration pipeline
  agents               show the discovered agent cards
  init [path]          write a default config file
  version              print the version

Flags:
  -config <path>   config file (env vars use the DESKMESH_ prefix)
  -json            machine-readable output for client commands
  -timeout <dur>   overall timeout for client commands`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "deskmesh:", err)
	os.Exit(1)
}

func runInit(args []string) {
	path := "deskmesh.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		fatal(fmt.Errorf("%s already exists", path))
	}
	if err := config.WriteDefault(path); err != nil {
		fatal(err)
	}
	fmt.Println("wrote", path)
}
