// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buhofis/buho-tui/internal/model"
)

// persisted is the stored layout: {chats:[...], activeChat:id}.
type persisted struct {
	Chats      []model.Chat `json:"chats"`
	ActiveChat int64        `json:"activeChat"`
}

func (s *Store) encodeLocked() ([]byte, error) {
	p := persisted{
		Chats:      make([]model.Chat, len(s.chats)),
		ActiveChat: s.activeID,
	}
	for i, c := range s.chats {
		p.Chats[i] = s.snapshot(c)
	}
	return json.Marshal(p)
}

// restore replaces the store contents with a decoded snapshot. Chats with
// duplicate ids are dropped and messages left streaming by a previous
// process are revived as finished.
func (s *Store) restore(data []byte) error {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool, len(p.Chats))
	chats := make([]*chat, 0, len(p.Chats))
	var lastID int64
	for _, pc := range p.Chats {
		if pc.ID == 0 || seen[pc.ID] {
			continue
		}
		seen[pc.ID] = true

		c := &chat{
			id:        pc.ID,
			name:      pc.Name,
			createdAt: pc.CreatedAt,
			byID:      make(map[string]*model.Message, len(pc.Messages)),
		}
		if c.name == "" {
			c.name = model.DefaultChatName
		}
		if c.createdAt.IsZero() {
			c.createdAt = time.UnixMilli(pc.ID)
		}
		for _, m := range pc.Messages {
			m := m
			if m.ID == "" || c.byID[m.ID] != nil {
				m.ID = uuid.NewString()
			}
			m.IsStreaming = false
			c.order = append(c.order, m.ID)
			c.byID[m.ID] = &m
		}
		chats = append(chats, c)
		if pc.ID > lastID {
			lastID = pc.ID
		}
	}

	if len(chats) == 0 {
		return nil
	}
	s.chats = chats
	s.lastID = lastID
	s.activeID = p.ActiveChat
	if s.find(s.activeID) == nil {
		s.activeID = chats[len(chats)-1].id
	}
	return nil
}
