// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"context"

	"github.com/buhofis/buho-tui/internal/model"
)

// Source resolves guided-flow nodes. The coordinator holds a primary
// (server) and a fallback (static) Source and treats them identically.
type Source interface {
	// Root returns the top-level options.
	Root(ctx context.Context) (model.FlowNode, error)
	// Next resolves the node reached by following path from the root.
	Next(ctx context.Context, path []string) (model.FlowNode, error)
}
