// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps data for the lifetime of the process.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a store whose entries expire ttl after their last
// write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, ttl/2+time.Minute)}
}

// Get implements TabStore.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	data := v.([]byte)
	return append([]byte(nil), data...), nil
}

// Set implements TabStore.
func (s *MemoryStore) Set(key string, data []byte) error {
	s.cache.Set(key, append([]byte(nil), data...), cache.DefaultExpiration)
	return nil
}

// Delete implements TabStore.
func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Close implements TabStore.
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
