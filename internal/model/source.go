// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
)

// Source is a document citation attached to a bot answer.
type Source struct {
	FileID      string   `json:"fileId,omitempty"`
	FileName    string   `json:"fileName,omitempty"`
	URL         string   `json:"url,omitempty"`
	Page        *int     `json:"page,omitempty"`
	ChunkIndex  *int     `json:"chunkIndex,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
}

// Key is the identity used for deduplication: file name, url, chunk and page.
func (s Source) Key() string {
	return s.FileName + "\x00" + s.URL + "\x00" + optInt(s.ChunkIndex) + "\x00" + optInt(s.Page)
}

// Label is the display name with the page appended when known.
func (s Source) Label() string {
	name := s.DisplayName
	if name == "" {
		name = DeriveDisplayName(s)
	}
	if s.Page != nil {
		return fmt.Sprintf("%s (p. %d)", name, *s.Page)
	}
	return name
}

// Clone copies the optional fields so the result shares no pointers with s.
func (s Source) Clone() Source {
	c := s
	if s.Page != nil {
		p := *s.Page
		c.Page = &p
	}
	if s.ChunkIndex != nil {
		ci := *s.ChunkIndex
		c.ChunkIndex = &ci
	}
	if s.Score != nil {
		sc := *s.Score
		c.Score = &sc
	}
	return c
}

// DeriveDisplayName picks the friendliest available name for a source.
func DeriveDisplayName(s Source) string {
	if s.FileName != "" {
		return s.FileName
	}
	if s.FileID != "" {
		return s.FileID
	}
	if s.URL != "" {
		if u, err := url.Parse(s.URL); err == nil {
			if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
				if unescaped, err := url.PathUnescape(base); err == nil {
					return unescaped
				}
				return base
			}
		}
	}
	return "Documento"
}

// MergeSources appends the incoming sources that are not already present,
// keeping first-seen order. Neither argument is modified.
func MergeSources(existing, incoming []Source) []Source {
	merged := make([]Source, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, group := range [][]Source{existing, incoming} {
		for _, s := range group {
			k := s.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, s.Clone())
		}
	}
	return merged
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// IntPtr is a convenience for optional integer fields.
func IntPtr(v int) *int { return &v }
