// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse implements a relaxed Server-Sent Events parser for the RAG
// streaming endpoint.
//
// The parser tolerates \r\n line endings, chunk boundaries that split
// frames or multi-byte characters, and frames it does not understand.
// A "done" event or a [DONE] data payload ends the stream.
//
// # Key Types
//
//   - Parser: incremental, push-style; Feed byte chunks and collect events
//   - Reader: pull-style wrapper over an io.Reader
//   - Event: an event name and its joined data lines
//
// # Usage
//
//	r := sse.NewReader(resp.Body)
//	for {
//	    ev, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package sse
