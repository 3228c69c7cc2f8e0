package cmd

import (
	"fmt"
	"time"

	"tinyflow/core/config"
	"tinyflow/core/server"

	"github.com/spf13/cobra"
)

var pingTimeout time.Duration

// pingCmd checks that a tinyflow instance answers on its utility port.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the utility server at server.address:server.utils_port",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		h, err := server.Ping(cfg.Server.UtilsURL(), pingTimeout)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (version %s, up %s)\n", cfg.Server.UtilsURL(), h.Status, h.Version, h.Uptime)
		return nil
	},
}

func init() {
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "request timeout")
	RootCmd.AddCommand(pingCmd)
}
