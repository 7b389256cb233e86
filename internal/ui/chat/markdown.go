// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// maxRenderCache bounds the cache of rendered answers. The cache is dropped
// wholesale when it fills or the wrap width changes.
const maxRenderCache = 256

// markdownRenderer renders finished bot answers with glamour and caches the
// output by content. Streaming content is never passed here.
type markdownRenderer struct {
	mu    sync.Mutex
	style string
	width int
	r     *glamour.TermRenderer
	cache map[string]string
}

func newMarkdownRenderer(style string) *markdownRenderer {
	return &markdownRenderer{style: style, cache: make(map[string]string)}
}

// Render returns content rendered for width columns. It falls back to the
// raw text when glamour fails.
func (mr *markdownRenderer) Render(content string, width int) string {
	if mr == nil || strings.TrimSpace(content) == "" {
		return content
	}
	if width < 20 {
		width = 20
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()

	if width != mr.width || mr.r == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(mr.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		mr.r = r
		mr.width = width
		mr.cache = make(map[string]string)
	}

	if out, ok := mr.cache[content]; ok {
		return out
	}

	out, err := mr.r.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")

	if len(mr.cache) >= maxRenderCache {
		mr.cache = make(map[string]string)
	}
	mr.cache[content] = out
	return out
}
