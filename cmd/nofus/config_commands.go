package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xmhha/nofus/pkg/config"
)

// configCommand handles configuration management subcommands.
type configCommand struct {
	configPath string
}

// Execute runs the config command with given arguments.
func (c *configCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.showHelp()
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "show":
		return c.runShow(subargs)
	case "path":
		return c.runPath()
	case "init":
		return c.runInit()
	case "help":
		return c.showHelp()
	default:
		return fmt.Errorf("unknown config subcommand: %s", subcommand)
	}
}

// runShow displays the active configuration after defaults, file and
// environment overrides have been applied.
func (c *configCommand) runShow(args []string) error {
	fs := flag.NewFlagSet("config show", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Println("# Active configuration")
	fmt.Print(string(data))
	return nil
}

// runPath shows the configuration file search paths.
func (c *configCommand) runPath() error {
	if c.configPath != "" {
		fmt.Println(c.configPath)
		return nil
	}

	fmt.Println("Configuration file search paths (in order of precedence):")
	for _, path := range config.SearchPaths() {
		marker := ""
		if _, err := os.Stat(path); err == nil {
			marker = "  (exists)"
		}
		fmt.Printf("  %s%s\n", path, marker)
	}
	return nil
}

// runInit writes a starter configuration file.
func (c *configCommand) runInit() error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if err := config.WriteTemplate(path); err != nil {
		return err
	}

	fmt.Printf("Wrote starter configuration to %s\n", path)
	return nil
}

// showHelp displays config command usage.
func (c *configCommand) showHelp() error {
	fmt.Print(`Configuration management

Usage:
  nofus config <subcommand>

Subcommands:
  show        Show the active configuration
  path        Show configuration file search paths
  init        Write a starter configuration file
  help        Show this help message
`)
	return nil
}
