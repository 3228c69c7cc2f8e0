package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// BaseContext returns a middleware that makes ctx the user context of every
// request. Handlers passing c.UserContext() to long operations stop when
// ctx is cancelled, typically at shutdown.
func BaseContext(ctx context.Context) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(ctx)
		return c.Next()
	}
}
