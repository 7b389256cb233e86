// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the session store,
// the coordinator and the user interfaces.
//
// # Key Types
//
//   - Chat: snapshot of a conversation with its ordered messages
//   - Message: a user or bot entry, optionally a notice or a streaming answer
//   - Source: a document citation; MergeSources deduplicates them
//   - FlowNode, Option: a resolved step of the guided flow
//   - Reachability: unknown, online or offline
//
// # Usage
//
//	msg := model.NewStreamingMessage()
//	msg.Sources = model.MergeSources(msg.Sources, incoming)
package model
