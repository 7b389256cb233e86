// buho - BuhoFis virtual assistant in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/buhofis/buho-tui/internal/cli"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/telemetry"
	"github.com/buhofis/buho-tui/internal/ui/chat"
	"github.com/buhofis/buho-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()
	cli.ConfigureColors(args.NoColor)

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion()
		return cli.ExitSuccess
	case cli.CmdDefault:
		if cli.IsInteractive() {
			cmd = cli.CmdTUI
		} else {
			cmd = cli.CmdChat
		}
	}

	cfg, err := loadConfig(args)
	if cfg == nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	if err != nil && !args.Quiet {
		// Parse errors fall back to defaults; say so and go on.
		fmt.Fprintf(os.Stderr, "aviso: %v (se usan valores por defecto)\n", err)
	}

	log, err := newLogger(cfg, cmd, args)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitConfigError
	}
	defer log.Sync()

	// The REPL handles Ctrl+C itself: it stops the answer, not the process.
	signals := []os.Signal{syscall.SIGTERM}
	if cmd != cli.CmdChat {
		signals = append(signals, os.Interrupt)
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Warn("main", "telemetry disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer shutdown(context.Background())
	}

	log.Info("main", "starting", map[string]interface{}{
		"command": cmd.String(),
		"version": Version,
	})

	err = dispatch(ctx, cmd, cfg, log, args)
	if err != nil {
		log.Error("main", "command failed", map[string]interface{}{
			"command": cmd.String(),
			"error":   err.Error(),
		})
		cli.DisplayError(os.Stderr, err)
	}
	return cli.GetExitCode(err)
}

func dispatch(ctx context.Context, cmd cli.Command, cfg *config.Config, log logging.Logger, args cli.Args) error {
	switch cmd {
	case cli.CmdTUI:
		return runTUI(ctx, cfg, log)
	case cli.CmdChat:
		return runChat(ctx, cfg, log, args)
	case cli.CmdAsk:
		return cli.HandleAsk(ctx, cfg, log, args, os.Stdout)
	case cli.CmdStatus:
		return cli.HandleStatus(ctx, cfg, log, args, os.Stdout)
	case cli.CmdConfig:
		return cli.HandleConfig(cfg, args, os.Stdout)
	case cli.CmdMock:
		return cli.HandleMock(ctx, cfg, log, args)
	default:
		cli.PrintUsage()
		return nil
	}
}

func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, &cli.ConfigError{Action: "load", Err: err}
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, &cli.ConfigError{Action: "load", Err: err}
	}
	return cfg, err
}

// newLogger writes to the rotating file. Only the mock server also logs to
// stderr; the TUI and the REPL own the terminal.
func newLogger(cfg *config.Config, cmd cli.Command, args cli.Args) (logging.Logger, error) {
	level := cfg.Logging.Level
	if args.Verbose {
		level = "debug"
	}
	file := cfg.Logging.File
	if file == "" {
		file = config.DefaultLogFile()
	}
	return logging.NewZapLogger(logging.Options{
		File:       file,
		Level:      level,
		Console:    cmd == cli.CmdMock,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
}

func runChat(ctx context.Context, cfg *config.Config, log logging.Logger, args cli.Args) error {
	app, err := cli.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		return cli.HandleChat(gctx, app, args)
	})
	return g.Wait()
}

func runTUI(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	app, err := cli.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := chat.New(app.Coord, styles.NewTheme(cfg.UI.Theme), log, chat.Options{
		Context:      ctx,
		Markdown:     cfg.UI.Markdown,
		SidebarWidth: cfg.UI.SidebarWidth,
		APIBase:      cfg.Backend.BaseURL,
		Export:       app.Export,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
