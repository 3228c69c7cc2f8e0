package cmd

import (
	"fmt"
	"os"

	"tinyflow/core/config"
	"tinyflow/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info - set by ldflags at build time
var (
	Version = "dev"
	Commit  = "unknown"
)

// configDir is where .env and tinyflow.yaml are looked up.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tinyflow",
	Short: "Tinyflow sign-off service",
	Long: `Tinyflow runs batch KLayout DRC and LVS over standard cell libraries.
It serves run history over HTTP and archives reports in S3-compatible storage.`,
	Version:       Version + " (commit: " + Commit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Errors are reported with a console logger, whatever the configured format.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding .env and tinyflow.yaml")
}

// bootstrap loads the configuration and builds the configured logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}
