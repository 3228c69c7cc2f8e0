package signoff

import (
	"time"

	"tinyflow/core/klayout"
)

const (
	KindDRC = "drc"
	KindLVS = "lvs"
)

const (
	StatusPass  = "pass"
	StatusFail  = "fail"
	StatusError = "error"
)

// Batch is one sign-off run over a list of cells.
type Batch struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	Kind        string       `gorm:"size:8;index" json:"kind"`
	Input       string       `json:"input"`
	Schematic   string       `json:"schematic,omitempty"`
	RequestedBy string       `gorm:"size:64" json:"requested_by,omitempty"`
	StartedAt   time.Time    `gorm:"index" json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Results     []CellResult `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"results"`
}

// TableName overrides the table name used by Batch.
func (Batch) TableName() string {
	return "signoff_batches"
}

// CellResult is the outcome of a single cell.
type CellResult struct {
	ID         uint                `gorm:"primaryKey" json:"-"`
	BatchID    string              `gorm:"size:36;index" json:"-"`
	Cell       string              `gorm:"size:128" json:"cell"`
	Status     string              `gorm:"size:8" json:"status"`
	Violations int                 `json:"violations"`
	Rules      []klayout.RuleCount `gorm:"serializer:json" json:"rules,omitempty"`
	Errors     []string            `gorm:"serializer:json" json:"errors,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Report     string              `json:"report,omitempty"`
}

// TableName overrides the table name used by CellResult.
func (CellResult) TableName() string {
	return "signoff_cell_results"
}

// Summary counts cell outcomes.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// Summary counts the batch's outcomes.
func (b *Batch) Summary() Summary {
	s := Summary{Total: len(b.Results)}
	for _, r := range b.Results {
		switch r.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		default:
			s.Errored++
		}
	}
	return s
}

// Clean reports whether every cell passed.
func (b *Batch) Clean() bool {
	s := b.Summary()
	return s.Failed == 0 && s.Errored == 0
}
