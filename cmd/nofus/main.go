// Package main provides the nofus daemon CLI.
//
// nofus watches a configured set of mount points (typically NFS), and
// runs user-defined shell commands when all of them become available
// or any of them is lost.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	dryRun := flag.Bool("dry-run", false, "log commands instead of executing them")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	// Handle version flag.
	if *showVersion {
		fmt.Printf("nofus %s\n", version)
		return nil
	}

	// Get command; with none, start monitoring (the daemon is the
	// point, subcommands are the exception).
	args := flag.Args()
	command := "run"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "run":
		cmd := &runCommand{
			configPath: *configPath,
			dryRun:     *dryRun,
			verbose:    *verbose,
		}
		return cmd.Execute()
	case "history":
		return runHistoryCommand(*configPath, args)
	case "config":
		cmd := &configCommand{configPath: *configPath}
		return cmd.Execute(args)
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// showUsage displays usage information.
func showUsage() error {
	usage := `nofus - a reliable NFS mount monitor

Usage:
  nofus [flags] [<command>] [command flags]

Commands:
  run         Start monitoring (default when no command is given)
  history     Show recent availability transitions
  config      Configuration management (show, path, init)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -dry-run    Log commands instead of executing them
  -verbose    Enable debug logging
  -version    Show version information

History Command Flags:
  -n          Number of transitions to show (default: 20)
  -format     Output format (table, json)

Examples:
  # Start monitoring with the default config
  nofus

  # Rehearse without running any commands
  nofus -dry-run -verbose

  # Show the last ten transitions
  nofus history -n 10

  # Show the active configuration
  nofus config show

  # Write a starter config file
  nofus config init

On first run without a configuration file, nofus writes a commented
template to ~/.config/nofus/config.yml and exits so you can edit it.

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
