// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Reachability is the last known state of the backend.
type Reachability int

const (
	ReachUnknown Reachability = iota
	ReachOnline
	ReachOffline
)

// String returns a lowercase name for logs.
func (r Reachability) String() string {
	switch r {
	case ReachOnline:
		return "online"
	case ReachOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Badge returns the short status label shown in the header.
func (r Reachability) Badge() string {
	switch r {
	case ReachOnline:
		return "[EN LÍNEA]"
	case ReachOffline:
		return "[SIN CONEXIÓN]"
	default:
		return "[CONECTANDO]"
	}
}
