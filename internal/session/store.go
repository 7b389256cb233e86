// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/storage"
	"github.com/buhofis/buho-tui/internal/util"
)

// StorageKey is the key the chat snapshot is persisted under.
const StorageKey = "buhoFis_chat_data"

// =============================================================================
// ERRORS
// =============================================================================

// ErrChatNotFound is returned when a chat id does not exist.
// Use errors.Is(err, ErrChatNotFound) to check for this error.
var ErrChatNotFound = &StoreError{Message: "chat not found"}

// ErrMessageNotFound is returned when a message id does not exist in a chat.
var ErrMessageNotFound = &StoreError{Message: "message not found"}

// StoreError represents a session store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// STORE
// =============================================================================

// chat holds messages as an arena plus index: order keeps display order and
// byID gives constant-time access for streaming updates.
type chat struct {
	id        int64
	name      string
	createdAt time.Time
	order     []string
	byID      map[string]*model.Message
}

// Store owns all chats of the current tab. It is safe for concurrent use.
// Every mutation is persisted to the backing TabStore.
type Store struct {
	mu       sync.Mutex
	chats    []*chat
	activeID int64
	lastID   int64
	now      func() time.Time

	backend storage.TabStore
	log     logging.Logger

	// saves may run concurrently after mu is released; seq keeps an older
	// snapshot from overwriting a newer one.
	saveMu   sync.Mutex
	seq      uint64
	savedSeq uint64
}

// Open loads the persisted snapshot from backend. A missing or unreadable
// snapshot yields a store with one fresh chat.
func Open(backend storage.TabStore, log logging.Logger) *Store {
	if backend == nil {
		backend = storage.NewMemoryStore(storage.DefaultTTL)
	}
	if log == nil {
		log = logging.NewNop()
	}
	s := &Store{backend: backend, log: log, now: time.Now}

	data, err := backend.Get(StorageKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		log.Warn("session", "failed to read chat snapshot", map[string]interface{}{"error": err.Error()})
	default:
		if err := s.restore(data); err != nil {
			log.Warn("session", "discarding corrupt chat snapshot", map[string]interface{}{"error": err.Error()})
		}
	}

	if len(s.chats) == 0 {
		s.mu.Lock()
		s.resetLocked()
		s.mu.Unlock()
	}
	return s
}

// =============================================================================
// QUERIES
// =============================================================================

// ActiveID returns the id of the active chat.
func (s *Store) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a snapshot of the active chat.
func (s *Store) Active() model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.find(s.activeID))
}

// Chat returns a snapshot of the chat with the given id.
func (s *Store) Chat(id int64) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.find(id)
	if c == nil {
		return model.Chat{}, false
	}
	return s.snapshot(c), true
}

// Chats returns snapshots of every chat in creation order.
func (s *Store) Chats() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = s.snapshot(c)
	}
	return out
}

// Len returns the number of chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateChat adds an empty chat with the default name and makes it active.
func (s *Store) CreateChat() model.Chat {
	s.mu.Lock()
	c := s.newChatLocked()
	s.chats = append(s.chats, c)
	s.activeID = c.id
	snap := s.snapshot(c)
	s.commitLocked()
	return snap
}

// SwitchActive makes the chat with the given id active.
func (s *Store) SwitchActive(id int64) error {
	s.mu.Lock()
	if s.find(id) == nil {
		s.mu.Unlock()
		return ErrChatNotFound
	}
	s.activeID = id
	s.commitLocked()
	return nil
}

// DeleteChat removes a chat. Deleting the active chat activates the last
// remaining one; deleting the only chat leaves a fresh default chat.
func (s *Store) DeleteChat(id int64) error {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrChatNotFound
	}
	s.chats = append(s.chats[:idx], s.chats[idx+1:]...)

	switch {
	case len(s.chats) == 0:
		s.resetLocked()
	case s.activeID == id:
		s.activeID = s.chats[len(s.chats)-1].id
	}
	s.commitLocked()
	return nil
}

// ClearAll removes every chat and starts over with one default chat.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.resetLocked()
	s.commitLocked()
}

// AppendMessage adds msg to the end of a chat. The first user message of a
// chat that still carries the default name renames it.
func (s *Store) AppendMessage(chatID int64, msg model.Message) error {
	s.mu.Lock()
	c := s.find(chatID)
	if c == nil {
		s.mu.Unlock()
		return ErrChatNotFound
	}

	if msg.IsUser() && c.name == model.DefaultChatName && !c.hasUserMessage() {
		if name := chatName(msg.Content); name != "" {
			c.name = name
		}
	}

	stored := msg.Clone()
	c.order = append(c.order, stored.ID)
	c.byID[stored.ID] = &stored
	s.commitLocked()
	return nil
}

// MutateMessage applies fn to a stored message in place. fn must not retain
// the pointer.
func (s *Store) MutateMessage(chatID int64, msgID string, fn func(*model.Message)) error {
	s.mu.Lock()
	c := s.find(chatID)
	if c == nil {
		s.mu.Unlock()
		return ErrChatNotFound
	}
	m, ok := c.byID[msgID]
	if !ok {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	id := m.ID
	fn(m)
	m.ID = id
	s.commitLocked()
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// chatName derives a chat name from the first user message, as sent.
func chatName(content string) string {
	return util.TruncateRunes(content, model.ChatNameMaxRunes, "...")
}

func (c *chat) hasUserMessage() bool {
	for _, id := range c.order {
		if c.byID[id].IsUser() {
			return true
		}
	}
	return false
}

// nextIDLocked returns a creation-time id, strictly increasing even when two
// chats are created within the same millisecond.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) newChatLocked() *chat {
	return &chat{
		id:        s.nextIDLocked(),
		name:      model.DefaultChatName,
		createdAt: s.now(),
		byID:      make(map[string]*model.Message),
	}
}

func (s *Store) resetLocked() {
	c := s.newChatLocked()
	s.chats = []*chat{c}
	s.activeID = c.id
}

func (s *Store) index(id int64) int {
	for i, c := range s.chats {
		if c.id == id {
			return i
		}
	}
	return -1
}

func (s *Store) find(id int64) *chat {
	if i := s.index(id); i >= 0 {
		return s.chats[i]
	}
	return nil
}

func (s *Store) snapshot(c *chat) model.Chat {
	if c == nil {
		return model.Chat{}
	}
	msgs := make([]model.Message, 0, len(c.order))
	for _, id := range c.order {
		msgs = append(msgs, c.byID[id].Clone())
	}
	return model.Chat{
		ID:        c.id,
		Name:      c.name,
		Messages:  msgs,
		CreatedAt: c.createdAt,
		Active:    c.id == s.activeID,
	}
}

// commitLocked encodes the current state, releases mu and writes the
// snapshot. Save failures are logged; the in-memory state stays
// authoritative.
func (s *Store) commitLocked() {
	data, err := s.encodeLocked()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if err != nil {
		s.log.Error("session", "failed to encode chat snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.savedSeq {
		return
	}
	if err := s.backend.Set(StorageKey, data); err != nil {
		s.log.Warn("session", "failed to persist chat snapshot", map[string]interface{}{"error": err.Error()})
		return
	}
	s.savedSeq = seq
}
