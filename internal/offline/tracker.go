// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"sync"

	"github.com/buhofis/buho-tui/internal/model"
)

// Notice shown the first time a user action hits an unreachable backend.
const (
	NoticeTitle   = "Modo sin conexión"
	NoticeContent = "Estoy teniendo problemas para conectar con el backend.\n" +
		"Mientras tanto, usaré respuestas de demostración para que el chat siga funcionando."
)

// Tracker holds the backend reachability for one session along with the
// one-shot flag that limits the offline notice to a single appearance.
type Tracker struct {
	mu          sync.RWMutex
	state       model.Reachability
	noticeShown bool
}

// NewTracker creates a tracker in the unknown state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current reachability.
func (t *Tracker) State() model.Reachability {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// MarkOnline records a successful exchange. It reports whether the state
// changed.
func (t *Tracker) MarkOnline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := t.state != model.ReachOnline
	t.state = model.ReachOnline
	return changed
}

// MarkOffline records a network failure. It returns true exactly once per
// tracker: the caller shows the offline notice when it does.
func (t *Tracker) MarkOffline() (showNotice bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = model.ReachOffline
	if t.noticeShown {
		return false
	}
	t.noticeShown = true
	return true
}

// Observe records a probe result without consuming the notice flag.
func (t *Tracker) Observe(reachable bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := model.ReachOffline
	if reachable {
		next = model.ReachOnline
	}
	changed := t.state != next
	t.state = next
	return changed
}
