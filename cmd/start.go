package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tinyflow/core/loader"
	"tinyflow/core/logger"
	"tinyflow/core/middleware/auth"
	"tinyflow/core/middleware/rayid"
	"tinyflow/core/server"
	"tinyflow/feature/settings"
	"tinyflow/feature/signoff"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "tinyflow/docs/swagger"
)

// @title Tinyflow API
// @version 1.0
// @description Batch DRC and LVS sign-off runs over KLayout, with run history and report archive.
// @host localhost:1024
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API and utility servers",
	Long:  `Starts the API server on server.port and the utility server on server.utils_port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Configuration and logger
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Features
		svc := newSignoffService(cfg, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(settings.NewFeature(cfg, logg))
		mgr.Register(signoff.NewFeature(svc, logg))

		// 3. API server
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Cancelled before shutdown so running batches stop between cells
		baseCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// RayID must be first to trace everything
		app.Use(rayid.New())
		app.Use(server.BaseContext(baseCtx))

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Every route needs the API key; only superusers may start runs
		if cfg.Server.ApiKey == "" {
			logg.Warn("No API key configured, the API is read-only")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Superusers: cfg.SuperuserSet()}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 4. Utility server
		utils := server.NewUtilsApp(Version)

		go func() {
			logg.Info("Starting API server",
				zap.String("listen", cfg.Server.ListenAddr()),
				zap.String("url", cfg.Server.APIURL()))
			if err := app.Listen(cfg.Server.ListenAddr()); err != nil {
				logg.Fatal("API server failed to start", zap.Error(err))
			}
		}()
		go func() {
			logg.Info("Starting utility server",
				zap.String("listen", cfg.Server.UtilsListenAddr()),
				zap.String("url", cfg.Server.UtilsURL()))
			if err := utils.Listen(cfg.Server.UtilsListenAddr()); err != nil {
				logg.Fatal("Utility server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down servers...")
		cancel()
		_ = app.Shutdown()
		_ = utils.Shutdown()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
