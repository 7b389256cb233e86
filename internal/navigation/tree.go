// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/buhofis/buho-tui/internal/model"
)

//go:embed flowtree.yaml
var bundledTree []byte

// Answer shown when a path leaves the tree.
const (
	NotFoundTitle  = "No encontrado"
	NotFoundAnswer = "No existe esa ruta en el flujo."
)

// TreeNode is one node of a flow tree file. A node is an answer when Type
// says so or when it carries an answer and no options.
type TreeNode struct {
	Title    string         `yaml:"title" json:"title"`
	Type     model.NodeKind `yaml:"type,omitempty" json:"type,omitempty"`
	Answer   string         `yaml:"answer,omitempty" json:"answer,omitempty"`
	FileName string         `yaml:"file_name,omitempty" json:"file_name,omitempty"`
	Options  []TreeOption   `yaml:"options,omitempty" json:"options,omitempty"`
}

// TreeOption is a labelled edge to a child node.
type TreeOption struct {
	ID    string    `yaml:"id" json:"id"`
	Label string    `yaml:"label" json:"label"`
	Node  *TreeNode `yaml:"node,omitempty" json:"node,omitempty"`
}

// Kind returns the node kind with the implicit rules applied.
func (n *TreeNode) Kind() model.NodeKind {
	if n.Type != "" {
		return n.Type
	}
	if n.Answer != "" && len(n.Options) == 0 {
		return model.KindAnswer
	}
	return model.KindOptions
}

// FlowNode converts the tree node into the normalized form used everywhere
// else. Answer nodes carry no options.
func (n *TreeNode) FlowNode() model.FlowNode {
	node := model.FlowNode{
		Title:    n.Title,
		Kind:     n.Kind(),
		Answer:   n.Answer,
		FileName: strings.TrimSpace(n.FileName),
		Options:  []model.Option{},
	}
	if node.Title == "" {
		node.Title = model.DefaultFlowTitle
	}
	if node.Kind == model.KindOptions {
		for _, o := range n.Options {
			node.Options = append(node.Options, model.Option{ID: o.ID, Label: o.Label})
		}
	}
	return node
}

// Resolve walks path from n. Unknown ids yield the not-found answer node.
func (n *TreeNode) Resolve(path []string) model.FlowNode {
	cur := n
	for _, id := range path {
		next := cur.child(id)
		if next == nil {
			return model.FlowNode{
				Title:   NotFoundTitle,
				Kind:    model.KindAnswer,
				Answer:  NotFoundAnswer,
				Options: []model.Option{},
			}
		}
		cur = next
	}
	return cur.FlowNode()
}

func (n *TreeNode) child(id string) *TreeNode {
	for i := range n.Options {
		if n.Options[i].ID == id {
			return n.Options[i].Node
		}
	}
	return nil
}

// Validate checks that option ids are unique per node and every option
// leads somewhere.
func (n *TreeNode) Validate() error {
	return n.validate("root")
}

func (n *TreeNode) validate(at string) error {
	seen := make(map[string]bool, len(n.Options))
	for _, o := range n.Options {
		if o.ID == "" {
			return fmt.Errorf("%s: option with empty id", at)
		}
		if seen[o.ID] {
			return fmt.Errorf("%s: duplicate option id %q", at, o.ID)
		}
		seen[o.ID] = true
		if o.Node == nil {
			return fmt.Errorf("%s/%s: option has no node", at, o.ID)
		}
		if err := o.Node.validate(at + "/" + o.ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// BundledTree parses the flow tree compiled into the binary.
func BundledTree() (*TreeNode, error) {
	return ParseTree(bundledTree, "yaml")
}

// ParseTree decodes a tree in the given format ("yaml" or "json").
func ParseTree(data []byte, format string) (*TreeNode, error) {
	var root TreeNode
	var err error
	switch strings.ToLower(format) {
	case "json":
		err = json.Unmarshal(data, &root)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &root)
	default:
		return nil, fmt.Errorf("unsupported flow tree format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse flow tree: %w", err)
	}
	if len(root.Options) == 0 {
		return nil, errors.New("flow tree has no options")
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &root, nil
}

// LoadTreeFile reads a tree from disk. The format follows the extension;
// .json is JSON, everything else YAML.
func LoadTreeFile(path string) (*TreeNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return ParseTree(data, format)
}
