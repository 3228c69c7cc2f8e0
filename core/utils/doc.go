// Package utils provides small helpers shared by the tinyflow packages.
// It includes list parsing and normalization used for superuser sets,
// cell lists and skip lists.
package utils
