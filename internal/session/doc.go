// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chats of the current terminal tab.
//
// The Store keeps an ordered list of chats, tracks which one is active and
// persists a JSON snapshot to a storage.TabStore after every mutation.
// Readers get copies (model.Chat); the only way to change a message is
// through AppendMessage or MutateMessage.
//
// # Key Types
//
//   - Store: chat list, active chat and message arena
//   - StoreError: ErrChatNotFound, ErrMessageNotFound
//
// # Usage
//
//	store := session.Open(tabStore, log)
//	chat := store.Active()
//	store.AppendMessage(chat.ID, model.NewUserMessage("Hola"))
//	store.MutateMessage(chat.ID, msgID, func(m *model.Message) {
//	    m.Content += "token"
//	})
//
// # Naming
//
// A chat named "Nueva conversación" takes its name from its first user
// message, cut to 30 characters with "..." appended when longer.
package session
