package utils

import (
	"strings"
)

// SplitList splits a comma separated value into trimmed, non-empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize trims every item, drops empty ones and removes duplicates.
// The first occurrence of each item keeps its position.
func Normalize(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Without returns items minus every entry present in skip, preserving order.
func Without(items, skip []string) []string {
	if len(skip) == 0 {
		return items
	}
	drop := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		drop[s] = struct{}{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := drop[item]; !ok {
			out = append(out, item)
		}
	}
	return out
}
