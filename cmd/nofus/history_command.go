package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/0xmhha/nofus/pkg/config"
	"github.com/0xmhha/nofus/pkg/history"
)

// ANSI colors for the condition column.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
)

// historyCommand shows recent availability transitions.
type historyCommand struct {
	configPath string
	limit      int
	format     string
}

// runHistoryCommand parses history flags and executes the command.
func runHistoryCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 20, "number of transitions to show")
	format := fs.String("format", "table", "output format (table, json)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &historyCommand{
		configPath: configPath,
		limit:      *limit,
		format:     *format,
	}
	return cmd.Execute()
}

// Execute runs the history command.
func (c *historyCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return err
	}

	if !cfg.History.Enabled {
		return fmt.Errorf("transition journal is disabled in the configuration")
	}

	store, err := history.NewBoltStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(c.limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	switch c.format {
	case "json":
		return writeHistoryJSON(os.Stdout, records)
	case "table":
		color := term.IsTerminal(int(os.Stdout.Fd()))
		return writeHistoryTable(os.Stdout, records, color)
	default:
		return fmt.Errorf("unknown format: %s", c.format)
	}
}

// writeHistoryJSON writes records as a JSON array.
func writeHistoryJSON(w io.Writer, records []history.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// writeHistoryTable writes records as an aligned text table,
// newest first.
func writeHistoryTable(w io.Writer, records []history.Record, color bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No transitions recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCONDITION\tTRIGGER\tCOMMAND\tRESULT")

	for _, rec := range records {
		condition := rec.To
		if color {
			if rec.To == "any-unmounted" {
				condition = colorRed + rec.To + colorReset
			} else {
				condition = colorGreen + rec.To + colorReset
			}
		}

		result := "ok"
		switch {
		case rec.DryRun:
			result = "dry-run"
		case !rec.Success:
			result = "failed: " + rec.Error
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.At.Local().Format(time.RFC3339),
			condition,
			rec.Path,
			rec.Command,
			result)
	}

	return tw.Flush()
}
