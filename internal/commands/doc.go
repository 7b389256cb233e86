// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the TUI and
// the line REPL.
//
// Commands drive a Session (the coordinator) and hand back a Result the
// presentation layer renders. Nothing here depends on a particular UI.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Handler: Executes one command against a Context
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /new, /chats, /switch, /delete, /clear: manage conversations
//   - /guia, /opcion, /atras, /reiniciar, /libre: guided flow
//   - /export: write the active chat as markdown or JSON
//   - /stop, /status, /help, /quit
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res, err := reg.Execute(&commands.Context{Ctx: ctx, Session: coord}, "/switch 2")
//	if err != nil {
//	    fmt.Println(err)
//	}
//	if res.Quit {
//	    return
//	}
package commands
