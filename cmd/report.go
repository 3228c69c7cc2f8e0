package cmd

import (
	"fmt"

	"tinyflow/core/klayout"

	"github.com/spf13/cobra"
)

var reportJSON bool

// reportCmd is the parent command for offline report inspection.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize an existing KLayout report",
}

var reportDRCCmd = &cobra.Command{
	Use:   "drc [file.lyrdb]",
	Short: "Summarize a DRC report database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := klayout.ParseDRCFile(args[0])
		if err != nil {
			return err
		}
		if reportJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		w := cmd.OutOrStdout()
		if report.Clean() {
			fmt.Fprintln(w, "CLEAN")
			return nil
		}
		fmt.Fprintf(w, "FAILED - %d violation(s):\n", report.Total)
		for _, rc := range report.ByRule {
			fmt.Fprintf(w, "    [%d] %s\n", rc.Count, rc.Label())
		}
		return nil
	},
}

var reportLVSCmd = &cobra.Command{
	Use:   "lvs [file.lvsdb]",
	Short: "Summarize an LVS database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := klayout.ParseLVSFile(args[0])
		if err != nil {
			return err
		}
		if reportJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		w := cmd.OutOrStdout()
		if report.Match {
			fmt.Fprintln(w, "CLEAN")
			return nil
		}
		fmt.Fprintf(w, "FAILED - %d issue(s)\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
		return nil
	},
}

func init() {
	reportCmd.PersistentFlags().BoolVar(&reportJSON, "json", false, "print as JSON")
	reportCmd.AddCommand(reportDRCCmd, reportLVSCmd)
	RootCmd.AddCommand(reportCmd)
}
