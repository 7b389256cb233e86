// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the BuhoFis backend.
//
// Every call goes through Client.Do, which joins the base URL, adds the
// default headers, starts a client span and maps failures onto three error
// types the rest of the program branches on:
//
//   - *HTTPError: the backend answered with a non-2xx status
//   - *NetworkError: the backend could not be reached
//   - *AbortError: the caller cancelled the context
//
// # Key Types
//
//   - Client: base URL, headers, timeout; Do, DoJSON, Ping
//   - StreamEvent: tagged item of a RAG answer stream
//   - RAGRequest, AskResponse: bodies of the /rag endpoints
//
// # Usage
//
//	client := api.NewClient(cfg.Backend.BaseURL).WithLogger(log)
//	for ev := range client.StreamRAG(ctx, api.RAGRequest{Question: q, OptimizeQuery: true}) {
//	    switch ev.Kind {
//	    case api.EventFragment:
//	        fmt.Print(ev.Text)
//	    case api.EventFailed:
//	        return ev.Err
//	    }
//	}
package api
