// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/buhofis/buho-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports chats to JSON.
// NOTE: The chat object uses the same field names as the tab snapshot, so an
// export can be inspected with the same tooling.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonExport struct {
	Generator string     `json:"generator"`
	Exported  time.Time  `json:"exported"`
	Chat      model.Chat `json:"chat"`
}

// Export converts a chat to indented JSON.
func (e *JSONExporter) Export(chat model.Chat) ([]byte, error) {
	if len(chat.Messages) == 0 {
		return nil, ErrEmptyChat
	}
	if !e.options.IncludeSources {
		chat.Messages = append([]model.Message(nil), chat.Messages...)
		for i := range chat.Messages {
			chat.Messages[i].Sources = nil
		}
	}
	return json.MarshalIndent(jsonExport{
		Generator: "buho-tui",
		Exported:  e.options.now().UTC(),
		Chat:      chat,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
