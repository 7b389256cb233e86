// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigation resolves guided-flow nodes.
//
// # Key Types
//
//   - Source: Root and Next, implemented by both sources below
//   - ServerSource: the backend's /navigation and /navigation/next endpoints
//   - StaticSource: an in-memory tree, by default the one bundled in
//     flowtree.yaml; optionally loaded from a YAML or JSON file and
//     hot-reloaded with Watch
//   - TreeNode: the on-disk tree format
//
// # Usage
//
//	primary := navigation.NewServerSource(client)
//	fallback, _ := navigation.NewBundledSource()
//	node, err := primary.Next(ctx, []string{"academicas", "becas"})
package navigation
