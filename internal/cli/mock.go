// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// mock.go - Development mock backend.
//
// Command: mock
// Short:   Arranca el backend simulado
// Aliases: mockserver
//
// Flags:
//   --addr HOST:PORT    Listen address (default mock.addr)
//   --files DIR         Directory served by /files/download
//   --interval MS       Pause between streamed fragments

package cli

import (
	"context"
	"time"

	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/server"
)

// MockOptions merges the mock config with the command-line overrides.
func MockOptions(cfg *config.Config, args Args) server.Options {
	opts := server.Options{
		Addr:          cfg.Mock.Addr,
		TokenInterval: cfg.Mock.TokenInterval(),
		FilesDir:      cfg.Mock.FilesDir,
	}
	if args.Addr != "" {
		opts.Addr = args.Addr
	}
	if args.FilesDir != "" {
		opts.FilesDir = args.FilesDir
	}
	if args.IntervalMs >= 0 {
		opts.TokenInterval = time.Duration(args.IntervalMs) * time.Millisecond
	}
	return opts
}

// HandleMock serves the mock backend until ctx is done.
func HandleMock(ctx context.Context, cfg *config.Config, log logging.Logger, args Args) error {
	tree, err := LoadTree(cfg, log)
	if err != nil {
		return err
	}
	srv := server.New(tree, MockOptions(cfg, args), log)
	return srv.Run(ctx)
}
