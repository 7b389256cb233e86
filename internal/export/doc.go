// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to disk.
//
// # Key Types
//
//   - Exporter: Converts a model.Chat to bytes
//   - MarkdownExporter: Readable transcript with front matter and sources
//   - JSONExporter: The chat object as stored, wrapped with export metadata
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(chat, exp, "", nil)
package export
