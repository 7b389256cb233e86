// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultChatName is the placeholder name of a chat nobody has written in.
const DefaultChatName = "Nueva conversación"

// ChatNameMaxRunes bounds the name derived from the first user message.
const ChatNameMaxRunes = 30

// Chat is a read-only snapshot of one conversation.
type Chat struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// UserMessageCount returns how many messages the user authored.
func (c Chat) UserMessageCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.IsUser() {
			n++
		}
	}
	return n
}

// LastMessage returns the newest message, if any.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
