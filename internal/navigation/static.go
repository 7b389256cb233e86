// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"context"
	"sync"

	"github.com/buhofis/buho-tui/internal/model"
)

// StaticSource answers from an in-memory tree. It never fails, which makes
// it the offline fallback.
type StaticSource struct {
	mu   sync.RWMutex
	tree *TreeNode
}

// NewStaticSource creates a source over tree.
func NewStaticSource(tree *TreeNode) *StaticSource {
	return &StaticSource{tree: tree}
}

// NewBundledSource creates a source over the tree compiled into the binary.
func NewBundledSource() (*StaticSource, error) {
	tree, err := BundledTree()
	if err != nil {
		return nil, err
	}
	return NewStaticSource(tree), nil
}

// Root implements Source.
func (s *StaticSource) Root(ctx context.Context) (model.FlowNode, error) {
	return s.Resolve(nil), nil
}

// Next implements Source.
func (s *StaticSource) Next(ctx context.Context, path []string) (model.FlowNode, error) {
	return s.Resolve(path), nil
}

// Resolve returns the node at path.
func (s *StaticSource) Resolve(path []string) model.FlowNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Resolve(path)
}

// Replace swaps in a new tree.
func (s *StaticSource) Replace(tree *TreeNode) {
	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
}

// LoadFile replaces the tree with the one at path. On error the current
// tree is kept.
func (s *StaticSource) LoadFile(path string) error {
	tree, err := LoadTreeFile(path)
	if err != nil {
		return err
	}
	s.Replace(tree)
	return nil
}
