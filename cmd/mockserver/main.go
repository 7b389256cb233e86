// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs the buho mock backend on its own, without the rest of
// the CLI. It is equivalent to "buho mock".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buhofis/buho-tui/internal/cli"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default ~/.buho/config.toml)")
	addr := flag.String("addr", "", "listen address, e.g. 127.0.0.1:8000")
	files := flag.String("files", "", "directory served by /files/download")
	interval := flag.Int("interval", -1, "milliseconds between streamed fragments")
	level := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	args := cli.Args{ConfigPath: *cfgPath, Addr: *addr, FilesDir: *files, IntervalMs: *interval}
	if err := run(args, *level); err != nil {
		fmt.Fprintf(os.Stderr, "mockserver: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func run(args cli.Args, level string) error {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if cfg == nil {
		return &cli.ConfigError{Action: "load", Err: err}
	}

	if level == "" {
		level = cfg.Logging.Level
	}
	log, err := logging.NewZapLogger(logging.Options{Level: level, Console: true})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := cli.LoadTree(cfg, log)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := server.New(tree, cli.MockOptions(cfg, args), log).Run(ctx); err != nil {
		log.Error("main", "mock backend failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	log.Info("main", "bye", map[string]interface{}{"uptime": time.Since(started).Round(time.Second).String()})
	return nil
}
