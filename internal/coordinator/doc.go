// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coordinator is the interaction core of buho: it decides what
// happens when the user sends a question, walks the guided flow or loses
// the backend.
//
// There are two modes. In free-text mode the user types questions and
// answers stream into a placeholder message. In guided-flow mode the user
// may only pick an offered option, go back, restart or exit.
//
// Network failures degrade instead of failing: guided navigation falls
// back to the bundled tree and free-text answers to a simulated stream,
// with a one-time notice. Server errors are reported in the chat.
//
// # Key Types
//
//   - Coordinator: owns the flow cursor, the stream handle and the pending input
//   - State: immutable snapshot read by views
//   - Deps, Options: construction parameters
//
// # Usage
//
//	coord, err := coordinator.New(coordinator.Deps{
//	    Store:     store,
//	    Primary:   navigation.NewServerSource(client),
//	    Fallback:  bundled,
//	    Streamer:  client,
//	    Simulator: offline.NewResponder(0),
//	    Pinger:    client,
//	}, coordinator.DefaultOptions())
//	go coord.Run(ctx)
//
//	for range coord.Updates() {
//	    render(coord.State())
//	}
//
// # Concurrency
//
// One mutex guards the coordinator; the session store is always locked
// after it. Flow operations block on the network and should run off the
// UI goroutine. Only one answer stream is in flight at a time.
package coordinator
