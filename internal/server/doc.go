// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a mock of the BuhoFis backend built on Fiber.
//
// The mock answers with canned data so the TUI and CLI can be developed
// without the real RAG service. Navigation is resolved against the same
// flow tree the client bundles.
//
// # Endpoints
//
//   - GET  /health                - Liveness probe
//   - GET  /stats                 - Request counters
//   - GET  /navigation            - Root options of the flow tree
//   - POST /navigation/next       - Resolve {path: [...]}
//   - POST /rag/ask               - Canned non-streaming answer
//   - POST /rag/stream            - Canned SSE answer (metadata, tokens, done)
//   - GET  /files/download/:name  - Files from Options.FilesDir
//
// Every error body is {"error": "..."}. Malformed JSON bodies get 400 with
// "Bad request (mock)".
//
// # Key Types
//
//   - Server: the Fiber app plus its options and counters
//   - Options: listen address, token pacing and download directory
//
// # Usage
//
//	tree, _ := navigation.NewBundledSource()
//	srv := server.New(tree, server.Options{Addr: "127.0.0.1:8000"}, log)
//	if err := srv.Run(ctx); err != nil {
//		log.Error("SERVER", "mock backend failed", map[string]interface{}{"error": err.Error()})
//	}
package server
