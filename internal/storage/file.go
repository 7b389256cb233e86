// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/buhofis/buho-tui/internal/util"
)

// FileStore keeps one file per key under <dir>/<tabID>/. Reopening buho in
// the same tab finds the previous chats; data in tabs idle for longer than
// the TTL is treated as gone and pruned.
type FileStore struct {
	baseDir string
	tabDir  string
	ttl     time.Duration
	now     func() time.Time
}

// NewFileStore creates the tab directory and prunes expired tabs.
func NewFileStore(dir, tabID string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if tabID == "" {
		tabID = DefaultTabID()
	}
	s := &FileStore{
		baseDir: dir,
		tabDir:  filepath.Join(dir, SanitizeTabID(tabID)),
		ttl:     ttl,
		now:     time.Now,
	}
	if err := os.MkdirAll(s.tabDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create tab directory: %w", err)
	}
	s.pruneExpiredTabs()
	return s, nil
}

// Dir returns the directory holding this tab's files.
func (s *FileStore) Dir() string {
	return s.tabDir
}

// Get implements TabStore.
func (s *FileStore) Get(key string) ([]byte, error) {
	path := s.path(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.expired(info.ModTime()) {
		os.Remove(path)
		return nil, ErrNotFound
	}
	return os.ReadFile(path)
}

// Set implements TabStore.
func (s *FileStore) Set(key string, data []byte) error {
	return util.AtomicWriteFile(s.path(key), data, 0600)
}

// Delete implements TabStore.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close implements TabStore.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.tabDir, SanitizeTabID(key)+".json")
}

func (s *FileStore) expired(mod time.Time) bool {
	return s.ttl > 0 && s.now().Sub(mod) > s.ttl
}

// pruneExpiredTabs removes other tabs' directories that have not been
// written within the TTL. Errors are ignored; pruning is best effort.
func (s *FileStore) pruneExpiredTabs() {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		dir := filepath.Join(s.baseDir, e.Name())
		if !e.IsDir() || dir == s.tabDir {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if s.expired(info.ModTime()) {
			os.RemoveAll(dir)
		}
	}
}
