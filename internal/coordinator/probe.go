// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"time"
)

// Run probes backend liveness immediately and then every PingInterval until
// ctx is done. Probe results update reachability but never post the
// offline notice; only user actions do. Without a Pinger it returns at
// once.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.pinger == nil {
		return nil
	}

	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		c.probe(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.baseCtx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Coordinator) probe(ctx context.Context) {
	reachable := c.pinger.Ping(ctx, c.opts.PingPath, c.opts.PingTimeout)
	if ctx.Err() != nil {
		return
	}
	if c.tracker.Observe(reachable) {
		c.log.Info("coordinator", "backend reachability changed", map[string]interface{}{
			"state": c.tracker.State().String(),
		})
		c.notify()
	}
}
