package klayout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNoReport is returned when KLayout did not produce a report file.
var ErrNoReport = errors.New("no report generated")

// RuleCount is the number of violations of a single DRC rule.
type RuleCount struct {
	Rule        string `json:"rule"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
}

// Label returns "rule: description", or the bare rule without a description.
func (r RuleCount) Label() string {
	if r.Description == "" {
		return r.Rule
	}
	return r.Rule + ": " + r.Description
}

// DRCReport summarizes a KLayout report database (.lyrdb).
type DRCReport struct {
	Total  int         `json:"total"`
	ByRule []RuleCount `json:"by_rule"`
}

// Clean reports whether no violation was found.
func (r *DRCReport) Clean() bool {
	return r.Total == 0
}

type rdbCategory struct {
	Name        string        `xml:"name"`
	Description string        `xml:"description"`
	Children    []rdbCategory `xml:"categories>category"`
}

type rdbItem struct {
	Category string `xml:"category"`
}

type rdbDocument struct {
	Categories []rdbCategory `xml:"categories>category"`
	Items      []rdbItem     `xml:"items>item"`
}

// ParseDRC reads a .lyrdb report and counts violations per category.
// Rules are listed in the order their first violation appears.
func ParseDRC(r io.Reader) (*DRCReport, error) {
	var doc rdbDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode DRC report: %w", err)
	}

	descriptions := make(map[string]string)
	var collect func([]rdbCategory)
	collect = func(cats []rdbCategory) {
		for _, c := range cats {
			if name := strings.TrimSpace(c.Name); name != "" {
				descriptions[name] = strings.TrimSpace(c.Description)
			}
			collect(c.Children)
		}
	}
	collect(doc.Categories)

	report := &DRCReport{}
	index := make(map[string]int)
	for _, item := range doc.Items {
		rule := strings.ReplaceAll(strings.TrimSpace(item.Category), "'", "")
		if rule == "" {
			rule = "unknown"
		}
		i, ok := index[rule]
		if !ok {
			i = len(report.ByRule)
			index[rule] = i
			report.ByRule = append(report.ByRule, RuleCount{Rule: rule, Description: descriptions[rule]})
		}
		report.ByRule[i].Count++
		report.Total++
	}
	return report, nil
}

// ParseDRCFile parses the report at path, returning ErrNoReport when the
// file does not exist.
func ParseDRCFile(path string) (*DRCReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}
		return nil, err
	}
	defer f.Close()
	return ParseDRC(f)
}
