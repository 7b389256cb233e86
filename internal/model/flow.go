// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// DefaultFlowTitle is shown above the options when a node has no title.
const DefaultFlowTitle = "Opciones guiadas"

// NodeKind distinguishes intermediate menus from leaves.
type NodeKind string

const (
	KindOptions NodeKind = "options"
	KindAnswer  NodeKind = "answer"
)

// Option is a selectable child of a flow node.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// FlowNode is the result of resolving a cursor path in the guided flow.
type FlowNode struct {
	Title    string
	Kind     NodeKind
	Options  []Option
	Answer   string
	FileName string
}

// IsAnswer returns true for leaf nodes.
func (n FlowNode) IsAnswer() bool {
	return n.Kind == KindAnswer
}

// TitleOrDefault returns the node title, falling back to DefaultFlowTitle.
func (n FlowNode) TitleOrDefault() string {
	if n.Title == "" {
		return DefaultFlowTitle
	}
	return n.Title
}
