// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/buhofis/buho-tui/internal/model"
)

// ExtractSources reads citations from a metadata payload. The sources list
// is taken from meta.payload.sources, falling back to meta.sources. Entries
// may be bare file names or objects in either snake_case or camelCase.
// Entries with no file name, file id or url are dropped. When an entry has a
// file name but no url, the download url under apiBase is derived.
func ExtractSources(meta any, apiBase string) []model.Source {
	root, ok := meta.(map[string]any)
	if !ok {
		return nil
	}
	if payload, ok := root["payload"].(map[string]any); ok {
		root = payload
	}
	list, ok := root["sources"].([]any)
	if !ok {
		return nil
	}

	sources := make([]model.Source, 0, len(list))
	for _, entry := range list {
		var s model.Source
		switch v := entry.(type) {
		case string:
			s.FileName = strings.TrimSpace(v)
		case map[string]any:
			s.FileID = firstString(v, "file_id", "fileId")
			s.FileName = firstString(v, "file_name", "fileName")
			s.URL = firstString(v, "url", "file_url", "fileUrl")
			s.Page = firstInt(v, "page")
			s.ChunkIndex = firstInt(v, "chunk", "chunk_index", "chunkIndex")
			s.Score = firstFloat(v, "score")
		default:
			continue
		}

		if s.FileName == "" && s.FileID == "" && s.URL == "" {
			continue
		}
		if s.URL == "" && s.FileName != "" {
			s.URL = DownloadURL(apiBase, s.FileName)
		}
		s.DisplayName = model.DeriveDisplayName(s)
		sources = append(sources, s)
	}
	return sources
}

// DownloadURL returns the backend download location for a document.
func DownloadURL(apiBase, fileName string) string {
	return strings.TrimRight(apiBase, "/") + "/files/download/" + url.PathEscape(fileName)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) *int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				i := int(v)
				return &i
			}
		case json.Number:
			if i, err := strconv.Atoi(v.String()); err == nil {
				return &i
			}
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return &i
			}
		}
	}
	return nil
}

func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return &v
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}
