// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline keeps the chat usable while the backend is unreachable.
//
// # Key Types
//
//   - Tracker: reachability state plus the one-shot offline notice flag
//   - Responder: a paced, cancellable, simulated answer stream
//
// # Key Functions
//
//   - IsNetworkError: tells "could not reach the backend" apart from
//     "the backend answered with an error"
//   - ValidateBaseURL: http(s) scheme check for configured URLs
//
// # Usage
//
//	if offline.IsNetworkError(err) && tracker.MarkOffline() {
//	    // show the notice once
//	}
//	for ev := range offline.NewResponder(0).Stream(ctx, question) { ... }
package offline
