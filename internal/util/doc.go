// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across buho.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: rune-safe truncation with a caller supplied suffix
//   - TruncateWidth, PadWidth: terminal cell aware truncation (go-runewidth)
//   - TrimRightSpace: trailing whitespace trim used when a stream is aborted
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	name := util.TruncateRunes(firstQuestion, 30, "...")
//	err := util.AtomicWriteFile(path, data, 0600)
package util
