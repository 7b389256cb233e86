// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"context"
	"net/http"
	"strings"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/model"
)

// wireNode is the backend's node shape. Every field is optional and the
// file name has gone by several keys over time.
type wireNode struct {
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Options   []model.Option `json:"options"`
	Answer    *string        `json:"answer"`
	FileName  *string        `json:"file_name"`
	FileNameC *string        `json:"fileName"`
	File      *string        `json:"file"`
	Filename  *string        `json:"filename"`
}

type nextRequest struct {
	Path []string `json:"path"`
}

// ServerSource resolves nodes through the backend's /navigation endpoints.
// Errors from the client are returned unchanged so callers can tell network
// failures from server failures.
type ServerSource struct {
	client *api.Client
}

// NewServerSource creates a source backed by client.
func NewServerSource(client *api.Client) *ServerSource {
	return &ServerSource{client: client}
}

// Root implements Source with GET /navigation.
func (s *ServerSource) Root(ctx context.Context) (model.FlowNode, error) {
	var w wireNode
	if err := s.client.DoJSON(ctx, "/navigation", api.Request{Method: http.MethodGet}, &w); err != nil {
		return model.FlowNode{}, err
	}
	return w.normalize(), nil
}

// Next implements Source with POST /navigation/next.
func (s *ServerSource) Next(ctx context.Context, path []string) (model.FlowNode, error) {
	if path == nil {
		path = []string{}
	}
	var w wireNode
	err := s.client.DoJSON(ctx, "/navigation/next", api.Request{
		Method: http.MethodPost,
		Body:   nextRequest{Path: path},
	}, &w)
	if err != nil {
		return model.FlowNode{}, err
	}
	return w.normalize(), nil
}

func (w wireNode) normalize() model.FlowNode {
	node := model.FlowNode{
		Title:   w.Title,
		Kind:    model.KindOptions,
		Options: w.Options,
	}
	if strings.EqualFold(w.Type, string(model.KindAnswer)) {
		node.Kind = model.KindAnswer
	}
	if node.Options == nil {
		node.Options = []model.Option{}
	}
	if w.Answer != nil {
		node.Answer = *w.Answer
	}
	for _, f := range []*string{w.FileName, w.FileNameC, w.File, w.Filename} {
		if f != nil && strings.TrimSpace(*f) != "" {
			node.FileName = strings.TrimSpace(*f)
			break
		}
	}
	return node
}
