// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-oriented commands
// of buho.
//
// The full-screen interface lives in ui/chat; everything here works on plain
// terminals and pipes. Both paths share App, which wires storage, session,
// backend client and coordinator from the configuration.
//
// # Key Types
//
//   - Command: Enumeration of the CLI commands
//   - Args: Parsed command-line arguments with global and command flags
//   - ArgParser: Flag and positional splitting for subcommands
//   - App: Collaborators of an interactive session
//   - REPL: Line chat driving the coordinator
//   - Transcript: Incremental printer for the active chat
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, cfg, log, args, os.Stdout)
//	case cli.CmdChat:
//	    app, _ := cli.NewApp(cfg, log)
//	    err = cli.HandleChat(ctx, app, args)
//	}
//	os.Exit(cli.GetExitCode(err))
//
// # Commands Overview
//
//   - (none): TUI on a terminal, chat otherwise
//   - tui: Full-screen interface
//   - chat: Line chat with history and slash commands
//   - ask: Single question, streamed or with --no-stream
//   - status: Configuration summary and backend probe
//   - config: show, path, init, keys, get, set
//   - mock: Development mock backend
package cli
