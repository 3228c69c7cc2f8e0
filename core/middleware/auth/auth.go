package auth

import (
	"crypto/subtle"
	"slices"

	"tinyflow/core/access"

	"github.com/gofiber/fiber/v2"
)

const (
	// KeyHeader carries the API key.
	KeyHeader = "X-API-Key"
	// DefaultHeader names the caller's identifier.
	DefaultHeader = "X-Tinyflow-User"
)

// Config configures the API key check and the superuser gate.
type Config struct {
	// ApiKey is required on every request. When empty, only read methods
	// are served and every mutating request is refused.
	ApiKey string
	// Superusers is the set allowed through.
	Superusers access.Set
	// Header carries the caller identifier. Defaults to DefaultHeader.
	Header string
	// Methods are the HTTP methods that require a superuser.
	// Defaults to the mutating methods.
	Methods []string
}

// New returns a middleware that validates the API key, then only lets
// superusers issue the configured methods.
func New(cfg Config) fiber.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	methods := cfg.Methods
	if len(methods) == 0 {
		methods = []string{fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete}
	}

	return func(c *fiber.Ctx) error {
		guarded := slices.Contains(methods, c.Method())

		if cfg.ApiKey == "" {
			if guarded {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "API key not configured",
				})
			}
		} else if !validKey(c.Get(KeyHeader), cfg.ApiKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}

		if !guarded {
			return c.Next()
		}

		user := c.Get(header)
		if user == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing " + header + " header",
			})
		}
		if !cfg.Superusers.Contains(user) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "superuser privileges required",
			})
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

func validKey(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// UserKey is the Fiber locals key holding the authorized identifier.
const UserKey = "superuser"

// User returns the superuser that passed the gate, if any.
func User(c *fiber.Ctx) string {
	u, _ := c.Locals(UserKey).(string)
	return u
}
