package klayout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// CommandFunc runs an external program to completion.
type CommandFunc func(ctx context.Context, name string, args ...string) error

// Var is a single "-rd name=value" definition handed to a runset.
type Var struct {
	Name  string
	Value string
}

// Runner invokes KLayout in batch mode.
type Runner struct {
	// Binary is the klayout executable.
	Binary string
	// Exec runs the command; nil uses os/exec with output sent to Stdout and Stderr.
	Exec   CommandFunc
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner returns a Runner for the configured binary.
func NewRunner(cfg Config) *Runner {
	bin := cfg.Binary
	if bin == "" {
		bin = "klayout"
	}
	return &Runner{Binary: bin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args builds the klayout command line for a runset and its variables.
func Args(deck string, vars []Var) []string {
	args := []string{"-b", "-r", deck}
	for _, v := range vars {
		args = append(args, "-rd", v.Name+"="+v.Value)
	}
	return args
}

// Run executes deck with vars. A non-zero exit is not treated as failure:
// KLayout reports violations through the report file, which callers parse.
func (r *Runner) Run(ctx context.Context, deck string, vars []Var) error {
	args := Args(deck, vars)
	if r.Exec != nil {
		return r.Exec(ctx, r.Binary, args...)
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok && ctx.Err() == nil {
			return nil
		}
		return fmt.Errorf("failed to run %s: %w", r.Binary, err)
	}
	return nil
}

// DRCJob describes the DRC of one cell.
type DRCJob struct {
	Input     string
	Cell      string
	Deck      string
	OutputDir string
}

// ReportPath is where the runset writes the cell's report.
func (j DRCJob) ReportPath() string {
	return absPath(filepath.Join(j.OutputDir, j.Cell+"_drc.lyrdb"))
}

// LVSJob describes the LVS of one cell.
type LVSJob struct {
	Input         string
	Schematic     string
	Cell          string
	Deck          string
	OutputDir     string
	ExtractionDir string
}

// ReportPath is where the runset writes the cell's LVS database.
func (j LVSJob) ReportPath() string {
	return absPath(filepath.Join(j.OutputDir, j.Cell+"-lvslvs.lvsdb"))
}

// TargetPath is where the runset writes the extracted netlist.
func (j LVSJob) TargetPath() string {
	return absPath(filepath.Join(j.ExtractionDir, j.Cell+"-rcx.sp"))
}

// RunDRC runs DRC on one cell and parses its report.
func (r *Runner) RunDRC(ctx context.Context, job DRCJob) (*DRCReport, error) {
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", job.OutputDir, err)
	}
	report := job.ReportPath()
	if err := removeStale(report); err != nil {
		return nil, err
	}
	err := r.Run(ctx, absPath(job.Deck), []Var{
		{"input", absPath(job.Input)},
		{"top", job.Cell},
		{"report", report},
	})
	if err != nil {
		return nil, err
	}
	return ParseDRCFile(report)
}

// RunLVS runs LVS on one cell and parses its report.
func (r *Runner) RunLVS(ctx context.Context, job LVSJob) (*LVSReport, error) {
	for _, dir := range []string{job.OutputDir, job.ExtractionDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	report := job.ReportPath()
	if err := removeStale(report, job.TargetPath()); err != nil {
		return nil, err
	}
	err := r.Run(ctx, absPath(job.Deck), []Var{
		{"input", absPath(job.Input)},
		{"top", job.Cell},
		{"schematic", absPath(job.Schematic)},
		{"report", report},
		{"target", job.TargetPath()},
	})
	if err != nil {
		return nil, err
	}
	return ParseLVSFile(report)
}

// removeStale deletes outputs of an earlier run so that only files written
// by this run are parsed.
func removeStale(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale %s: %w", p, err)
		}
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
