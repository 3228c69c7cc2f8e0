package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tinyflow/core/config"

	"github.com/spf13/cobra"
)

var showJSON bool

// configCmd is the parent command for configuration inspection.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

// configShowCmd prints the effective configuration with secrets masked.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		r := cfg.Redacted()
		if showJSON {
			return writeJSON(cmd.OutOrStdout(), r)
		}
		printConfig(cmd.OutOrStdout(), &r)
		return nil
	},
}

// configSuperusersCmd lists the superusers, one per line.
var configSuperusersCmd = &cobra.Command{
	Use:   "superusers",
	Short: "List the superuser identifiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		for _, id := range cfg.Superusers() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

// configCheckCmd requires a configuration source and validates it.
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration sources",
	Long:  `Fails when no .env or tinyflow.yaml is present, or when any value is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigStrict(configDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (%s)\n", strings.Join(cfg.Sources(), ", "))
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
	configCmd.AddCommand(configShowCmd, configSuperusersCmd, configCheckCmd)
	RootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, c *config.Config) {
	fmt.Fprintf(w, "server.port:        %d\n", c.Server.Port)
	fmt.Fprintf(w, "server.address:     %s\n", c.Server.Address)
	fmt.Fprintf(w, "server.utils_port:  %d\n", c.Server.UtilsPort)
	fmt.Fprintf(w, "server.api_key:     %s\n", orNone(c.Server.ApiKey))
	fmt.Fprintf(w, "access.superusers:  %s\n", strings.Join(c.Access.Superusers, ", "))
	fmt.Fprintf(w, "access.token:       %s\n", orNone(c.Access.Token))
	fmt.Fprintf(w, "log:                %s/%s\n", c.Log.Level, c.Log.Format)
	fmt.Fprintf(w, "database:           %s %s\n", c.Database.Driver, c.Database.Name)
	fmt.Fprintf(w, "storage:            %s\n", orNone(c.Storage.Endpoint))
	fmt.Fprintf(w, "klayout.binary:     %s\n", c.Klayout.Binary)
	fmt.Fprintf(w, "klayout.skip_cells: %s\n", strings.Join(c.Klayout.SkipCells, ", "))
	if src := c.Sources(); len(src) > 0 {
		fmt.Fprintf(w, "sources:            %s\n", strings.Join(src, ", "))
	} else {
		fmt.Fprintln(w, "sources:            (defaults and environment)")
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
