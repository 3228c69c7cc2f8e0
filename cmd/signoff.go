package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"tinyflow/core/config"
	"tinyflow/core/database"
	"tinyflow/core/klayout"
	"tinyflow/core/storage"
	"tinyflow/feature/signoff"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	signoffInput      string
	signoffCells      []string
	signoffDeck       string
	signoffOutput     string
	signoffSchematic  string
	signoffExtraction string
	signoffJSON       bool
)

// drcCmd runs a DRC batch from the command line.
var drcCmd = &cobra.Command{
	Use:   "drc",
	Short: "Run batch DRC over standard cells",
	Long: `Runs the DRC runset on every cell of the layout and prints a per-rule
violation summary. Exits with status 1 when any cell is not clean.

Example:
  tinyflow drc --input stdcells.gds --cells INV,NAND2,NOR2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc := newSignoffService(cfg, logg)
		b, err := svc.RunDRC(cmd.Context(), signoff.DRCRequest{
			Input:     signoffInput,
			Cells:     signoffCells,
			Deck:      signoffDeck,
			OutputDir: signoffOutput,
		})
		if err != nil {
			return err
		}
		return finishBatch(cmd.OutOrStdout(), b, printDRC)
	},
}

// lvsCmd runs an LVS batch from the command line.
var lvsCmd = &cobra.Command{
	Use:   "lvs",
	Short: "Run batch LVS over standard cells",
	Long: `Compares every cell of the layout against the schematic netlist.
Exits with status 1 when any cell does not match or could not be checked.

Example:
  tinyflow lvs --input stdcells.gds --schematic stdcells.sp --cells INV,NAND2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc := newSignoffService(cfg, logg)
		b, err := svc.RunLVS(cmd.Context(), signoff.LVSRequest{
			Input:         signoffInput,
			Schematic:     signoffSchematic,
			Cells:         signoffCells,
			Deck:          signoffDeck,
			OutputDir:     signoffOutput,
			ExtractionDir: signoffExtraction,
		})
		if err != nil {
			return err
		}
		return finishBatch(cmd.OutOrStdout(), b, printLVS)
	},
}

func init() {
	for _, c := range []*cobra.Command{drcCmd, lvsCmd} {
		c.Flags().StringVarP(&signoffInput, "input", "i", "", "layout file (GDS)")
		c.Flags().StringSliceVarP(&signoffCells, "cells", "c", nil, "cells to check (comma separated)")
		c.Flags().StringVar(&signoffDeck, "deck", "", "runset overriding the configured one")
		c.Flags().StringVarP(&signoffOutput, "output", "o", "", "report directory overriding the configured one")
		c.Flags().BoolVar(&signoffJSON, "json", false, "print the batch as JSON")
		_ = c.MarkFlagRequired("input")
		_ = c.MarkFlagRequired("cells")
		RootCmd.AddCommand(c)
	}
	lvsCmd.Flags().StringVarP(&signoffSchematic, "schematic", "s", "", "schematic netlist (SPICE)")
	lvsCmd.Flags().StringVar(&signoffExtraction, "extraction", "", "extracted netlist directory overriding the configured one")
	_ = lvsCmd.MarkFlagRequired("schematic")
}

// newSignoffService wires the optional history database and report archive.
func newSignoffService(cfg *config.Config, logg *zap.Logger) *signoff.Service {
	var store *signoff.Store
	if db, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Run history disabled", zap.Error(err))
	} else if store, err = signoff.NewStore(db); err != nil {
		logg.Warn("Run history disabled", zap.Error(err))
	}

	var archive storage.Client
	client, err := storage.NewClient(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		logg.Debug("Report archive not configured")
	case err != nil:
		logg.Warn("Report archive disabled", zap.Error(err))
	default:
		archive = client
	}

	runner := klayout.NewRunner(cfg.Klayout)
	return signoff.NewService(runner, cfg.Klayout, logg, store, archive, cfg.Storage.Bucket)
}

func finishBatch(w io.Writer, b *signoff.Batch, printer func(io.Writer, *signoff.Batch)) error {
	if signoffJSON {
		if err := writeJSON(w, b); err != nil {
			return err
		}
	} else {
		printer(w, b)
	}
	if !b.Clean() {
		sum := b.Summary()
		return fmt.Errorf("%s batch %s: %d failed, %d not checked", strings.ToUpper(b.Kind), b.ID, sum.Failed, sum.Errored)
	}
	return nil
}

var separator = strings.Repeat("=", 50)

func printDRC(w io.Writer, b *signoff.Batch) {
	for _, r := range b.Results {
		fmt.Fprintf(w, "\n%s\nRunning DRC on: %s\n%s\n", separator, r.Cell, separator)
		switch r.Status {
		case signoff.StatusPass:
			fmt.Fprintln(w, "CLEAN")
		case signoff.StatusFail:
			fmt.Fprintf(w, "FAILED - %d violation(s):\n", r.Violations)
			for _, rc := range r.Rules {
				fmt.Fprintf(w, "    [%d] %s\n", rc.Count, rc.Label())
			}
		default:
			fmt.Fprintf(w, "Failed - %s\n", r.Reason)
		}
	}
	printSummary(w, b, func(r signoff.CellResult) {
		fmt.Fprintf(w, "  %s: %d violation(s)\n", r.Cell, r.Violations)
		for _, rc := range r.Rules {
			fmt.Fprintf(w, "      [%d] %s\n", rc.Count, rc.Label())
		}
	})
}

func printLVS(w io.Writer, b *signoff.Batch) {
	for _, r := range b.Results {
		fmt.Fprintf(w, "\n%s\nRunning LVS on: %s\n%s\n", separator, r.Cell, separator)
		switch r.Status {
		case signoff.StatusPass:
			fmt.Fprintln(w, "CLEAN")
		case signoff.StatusFail:
			fmt.Fprintf(w, "FAILED - %d issue(s)\n", r.Violations)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
		default:
			fmt.Fprintf(w, "SKIP - %s\n", r.Reason)
		}
	}
	printSummary(w, b, func(r signoff.CellResult) {
		fmt.Fprintf(w, "  %s - %d issue(s)\n", r.Cell, r.Violations)
	})
}

func printSummary(w io.Writer, b *signoff.Batch, failed func(signoff.CellResult)) {
	sum := b.Summary()
	fmt.Fprintf(w, "\n%s\nSUMMARY (%s)\n%s\n", separator, b.ID, separator)
	fmt.Fprintf(w, "Clean: %d/%d\n", sum.Passed, sum.Total)
	for _, r := range b.Results {
		if r.Status == signoff.StatusPass {
			fmt.Fprintf(w, "  %s\n", r.Cell)
		}
	}
	if sum.Failed > 0 {
		fmt.Fprintf(w, "\nFailed: %d/%d\n", sum.Failed, sum.Total)
		for _, r := range b.Results {
			if r.Status == signoff.StatusFail {
				failed(r)
			}
		}
	}
	if sum.Errored > 0 {
		fmt.Fprintf(w, "\nSkipped: %d/%d\n", sum.Errored, sum.Total)
		for _, r := range b.Results {
			if r.Status == signoff.StatusError {
				fmt.Fprintf(w, "  - %s: %s\n", r.Cell, r.Reason)
			}
		}
	}
}
