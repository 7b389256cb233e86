// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to a message.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Tú"
	case RoleBot:
		return "BuhoFis"
	default:
		return string(r)
	}
}

// =============================================================================
// VARIANT TYPE
// =============================================================================

// Variant marks bot messages that are notices rather than answers.
type Variant string

const (
	VariantNone    Variant = ""
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a chat. JSON tags follow the persisted snapshot
// format, which keeps the browser client's camelCase field names.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// IsStreaming is true while content is still arriving. Content only
	// grows while it is set.
	IsStreaming bool     `json:"isStreaming,omitempty"`
	Sources     []Source `json:"sources,omitempty"`

	// Notice fields
	Variant Variant `json:"variant,omitempty"`
	Title   string  `json:"title,omitempty"`
	Detail  string  `json:"detail,omitempty"`

	// Guided flow answers may point at a downloadable document.
	FileName    string `json:"fileName,omitempty"`
	FileMissing bool   `json:"fileMissing,omitempty"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewBotMessage creates a finished bot message.
func NewBotMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleBot,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewStreamingMessage creates the empty bot placeholder that a stream fills.
func NewStreamingMessage() Message {
	m := NewBotMessage("")
	m.IsStreaming = true
	m.Sources = []Source{}
	return m
}

// NewNotice creates a bot message rendered as a titled notice.
func NewNotice(variant Variant, title, content string) Message {
	m := NewBotMessage(content)
	m.Variant = variant
	m.Title = title
	return m
}

// NewErrorMessage creates an error notice carrying the underlying detail.
func NewErrorMessage(title, content, detail string) Message {
	m := NewNotice(VariantError, title, content)
	m.Detail = detail
	return m
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsUser returns true for user-authored messages.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsNotice returns true when the message carries a variant.
func (m Message) IsNotice() bool {
	return m.Variant != VariantNone
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	c := m
	if m.Sources != nil {
		c.Sources = make([]Source, len(m.Sources))
		for i, s := range m.Sources {
			c.Sources[i] = s.Clone()
		}
	}
	return c
}
