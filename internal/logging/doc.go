// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger used across buho.
//
// Entries are JSON lines written to a lumberjack-rotated file. The
// interactive front ends never log to the terminal; the mock server adds a
// console core.
//
// # Usage
//
//	log, err := logging.NewZapLogger(logging.Options{File: cfg.Logging.File, Level: "info"})
//	log.Info("coordinator", "stream finished", map[string]interface{}{"chat_id": id})
package logging
