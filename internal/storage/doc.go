// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides tab-scoped key/value backends for the session
// store.
//
// Chats live as long as the terminal tab that created them, not longer.
// Each backend enforces that with a TTL refreshed on every write.
//
// # Key Types
//
//   - TabStore: Get, Set, Delete, Close
//   - MemoryStore: process lifetime (go-cache)
//   - FileStore: survives restarts in the same tab, atomic writes
//   - RedisStore: shared between processes in the same tab
//
// # Usage
//
//	store, err := storage.New(storage.Options{Kind: "file", TabID: storage.DefaultTabID()})
//	data, err := store.Get("buhoFis_chat_data")
//	if errors.Is(err, storage.ErrNotFound) { ... }
package storage
