package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health is the body served by the utility server's /health route.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// NewUtilsApp builds the auxiliary server exposed on the utility port.
func NewUtilsApp(version string) *fiber.App {
	started := time.Now()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(Health{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": version})
	})
	return app
}

// Ping queries the /health route of a utility server at baseURL.
func Ping(baseURL string, timeout time.Duration) (*Health, error) {
	agent := fiber.Get(baseURL + "/health")
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("invalid utility server URL %s: %w", baseURL, err)
	}

	var h Health
	code, _, errs := agent.Struct(&h)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to reach %s: %w", baseURL, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("utility server %s answered %d", baseURL, code)
	}
	return &h, nil
}
