// Package main is the entry point for the efs application.
package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/efs/internal/cli"
	"github.com/joe/efs/internal/config"
	"github.com/joe/efs/internal/tui"
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		if !errors.Is(err, tui.ErrCancelled) {
			cli.ReportError(os.Stderr, err)
		}

		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	app := cli.NewApp(cfg, os.Stdout, os.Stderr)

	// The live view needs a terminal to draw on; piped runs print plainly.
	if cfg.Scan == nil || !cfg.Scan.Interactive || !term.IsTerminal(int(os.Stderr.Fd())) {
		return app.Run()
	}

	return tui.RunScan(app, cfg.Scan, tea.WithOutput(os.Stderr))
}
