// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ============================================================================
// REQUEST LOGGING
// ============================================================================

// requestLogger logs one line per request and counts it.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.stats.requests.Add(1)

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		details := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			s.log.Error("HTTP", "request failed", details)
		case status >= fiber.StatusBadRequest:
			s.log.Warn("HTTP", "request rejected", details)
		default:
			s.log.Info("HTTP", "request", details)
		}
		return err
	}
}

// ============================================================================
// ERROR HANDLER
// ============================================================================

// errorHandler renders every error as {"error": message}.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.log.Error("HTTP", "handler error", map[string]interface{}{
			"path":  c.Path(),
			"error": err.Error(),
		})
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
