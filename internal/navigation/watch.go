// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/buhofis/buho-tui/internal/logging"
)

// DefaultWatchDebounce coalesces the burst of events editors produce on save.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch reloads s from path whenever the file changes, until ctx is done.
// The parent directory is watched so that editors which save by renaming a
// temp file over the original are picked up. A file that fails to parse is
// logged and the previous tree stays in place.
func (s *StaticSource) Watch(ctx context.Context, path string, debounce time.Duration, log logging.Logger) error {
	if log == nil {
		log = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("navigation", "watcher error", map[string]interface{}{"error": err})

		case <-timer.C:
			if err := s.LoadFile(abs); err != nil {
				log.Warn("navigation", "flow tree reload failed", map[string]interface{}{"path": abs, "error": err})
				continue
			}
			log.Info("navigation", "flow tree reloaded", map[string]interface{}{"path": abs})
		}
	}
}
