// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds every redis round trip. Persistence runs on the UI
// path, so a slow server must not stall the chat.
const redisTimeout = 2 * time.Second

// RedisStore keeps a tab's data in redis under buho:<tabID>:<key> with a
// TTL refreshed on each write. It lets several buho processes in one tab
// (TUI and REPL, say) see the same chats.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to url, which is either a redis:// URL or a bare
// host:port, and pings it.
func NewRedisStore(url, tabID string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	if tabID == "" {
		tabID = DefaultTabID()
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "buho:" + SanitizeTabID(tabID) + ":",
		ttl:    ttl,
	}, nil
}

// Get implements TabStore.
func (s *RedisStore) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Set implements TabStore.
func (s *RedisStore) Set(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, data, s.ttl).Err()
}

// Delete implements TabStore.
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Close implements TabStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
