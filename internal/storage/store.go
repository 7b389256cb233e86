// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// TAB STORE
// =============================================================================

// TabStore is a small key/value store scoped to one terminal tab. Data is
// expected to disappear with the tab: backends enforce this with a TTL.
type TabStore interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores data under key, refreshing its TTL.
	Set(key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases backend resources.
	Close() error
}

// Backend kinds accepted by New.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindRedis  = "redis"
)

// DefaultTTL is how long a tab's data outlives its last write.
const DefaultTTL = 12 * time.Hour

// Options selects and configures a backend.
type Options struct {
	Kind     string
	TabID    string
	Dir      string // file backend root
	TTL      time.Duration
	RedisURL string
}

// New creates the backend named by opts.Kind. An empty kind selects memory.
func New(opts Options) (TabStore, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	switch strings.ToLower(opts.Kind) {
	case "", KindMemory:
		return NewMemoryStore(opts.TTL), nil
	case KindFile:
		return NewFileStore(opts.Dir, opts.TabID, opts.TTL)
	case KindRedis:
		return NewRedisStore(opts.RedisURL, opts.TabID, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", opts.Kind)
	}
}

// =============================================================================
// TAB IDENTITY
// =============================================================================

// tabEnvVars are checked in order; terminals and multiplexers export a
// per-tab or per-pane id under one of these names.
var tabEnvVars = []string{"BUHO_TAB_ID", "WT_SESSION", "TERM_SESSION_ID", "TMUX_PANE", "KITTY_WINDOW_ID", "WEZTERM_PANE"}

// DefaultTabID derives an identifier for the current terminal tab. When no
// terminal exports one, the parent process (the shell) stands in for it.
func DefaultTabID() string {
	for _, name := range tabEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return SanitizeTabID(v)
		}
	}
	return fmt.Sprintf("ppid-%d", os.Getppid())
}

var unsafeTabChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeTabID makes id safe to use as a path element and redis key part.
func SanitizeTabID(id string) string {
	id = unsafeTabChars.ReplaceAllString(id, "_")
	id = strings.Trim(id, "._")
	if id == "" {
		return "default"
	}
	return id
}

// DefaultDir returns the root directory of the file backend.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "buho", "tabs")
	}
	return filepath.Join(home, ".buho", "tabs")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned by Get for missing or expired keys.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StoreError{Message: "key not found"}

// StoreError represents a storage error comparable with errors.Is.
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
