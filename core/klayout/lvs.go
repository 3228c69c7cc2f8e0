package klayout

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// lvsdbMagic starts every KLayout LVS database.
const lvsdbMagic = "#%lvsdb-klayout"

// LVSReport is the outcome of a layout versus schematic comparison.
type LVSReport struct {
	Match  bool     `json:"match"`
	Errors []string `json:"errors"`
}

var (
	crossRefSection = regexp.MustCompile(`(?s)Z\((.*)\)`)

	netMismatch    = regexp.MustCompile(`N\((\d+) (\d+) 0\)`)
	deviceMismatch = regexp.MustCompile(`D\((\d+) (\d+) 0\)`)
	pinMismatch    = regexp.MustCompile(`P\((\d+) (\d+) 0\)`)
)

// xrefClass tells which side of a cross-reference pair has a counterpart.
// An id of 0 on one side means the element exists on the other side only;
// 0 on both sides is an unresolved pair.
type xrefClass int

const (
	paired xrefClass = iota
	layoutOnly
	schematicOnly
)

func classify(layout, schematic string) xrefClass {
	switch {
	case (layout == "0") == (schematic == "0"):
		return paired
	case schematic == "0":
		return layoutOnly
	default:
		return schematicOnly
	}
}

type xrefRule struct {
	re     *regexp.Regexp
	class  xrefClass
	format func(layout, schematic string) string
}

// Reported in this order: paired mismatches, then one-sided nets and devices.
var xrefRules = []xrefRule{
	{netMismatch, paired, func(l, s string) string { return "Net mismatch: layout net " + l + " vs schematic net " + s }},
	{deviceMismatch, paired, func(l, s string) string { return "Device mismatch: layout device " + l + " vs schematic device " + s }},
	{pinMismatch, paired, func(l, s string) string { return "Pin mismatch: layout pin " + l + " vs schematic pin " + s }},
	{netMismatch, layoutOnly, func(l, _ string) string { return "Extra net in layout: " + l }},
	{netMismatch, schematicOnly, func(_, s string) string { return "Missing net from schematic: " + s }},
	{deviceMismatch, layoutOnly, func(l, _ string) string { return "Extra device in layout: " + l }},
	{deviceMismatch, schematicOnly, func(_, s string) string { return "Missing device from schematic: " + s }},
}

// ParseLVS reads an LVS report. KLayout .lvsdb databases are inspected
// through their Z() cross-reference section; any other text report is
// accepted when it announces matching netlists.
func ParseLVS(r io.Reader) (*LVSReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read LVS report: %w", err)
	}
	content := string(raw)

	if !strings.HasPrefix(content, lvsdbMagic) {
		if strings.Contains(content, "Congratulations") || strings.Contains(content, "netlists match") {
			return &LVSReport{Match: true, Errors: []string{}}, nil
		}
		return &LVSReport{Match: false, Errors: []string{"LVS comparison failed"}}, nil
	}

	m := crossRefSection.FindStringSubmatch(content)
	if m == nil {
		return &LVSReport{Match: false, Errors: []string{"No cross-reference section found"}}, nil
	}
	section := m[1]

	errs := []string{}
	for _, rule := range xrefRules {
		for _, ids := range rule.re.FindAllStringSubmatch(section, -1) {
			layout, schematic := ids[1], ids[2]
			if classify(layout, schematic) != rule.class {
				continue
			}
			errs = append(errs, rule.format(layout, schematic))
		}
	}

	return &LVSReport{
		Match:  !strings.Contains(section, " 0)"),
		Errors: errs,
	}, nil
}

// ParseLVSFile parses the report at path, returning ErrNoReport when the
// file does not exist.
func ParseLVSFile(path string) (*LVSReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}
		return nil, err
	}
	defer f.Close()
	return ParseLVS(f)
}
