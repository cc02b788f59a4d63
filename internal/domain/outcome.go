package domain

// OutcomeStatus classifies what happened to a single candidate.
type OutcomeStatus string

const (
	OutcomeImported  OutcomeStatus = "imported"
	OutcomeDuplicate OutcomeStatus = "duplicate"
	OutcomeError     OutcomeStatus = "error"
)

// ImportOutcome is the per-item result. Every input item yields exactly one,
// in input order; nothing is silently dropped.
type ImportOutcome struct {
	Index      int           `json:"index"`
	Title      string        `json:"title"`
	Status     OutcomeStatus `json:"status"`
	ID         int64         `json:"id,omitempty"`         // set when imported
	ExistingID int64         `json:"existingId,omitempty"` // set when duplicate
	Reason     string        `json:"reason,omitempty"`     // set when error
}

// BatchResult aggregates one import batch.
type BatchResult struct {
	Imported   int             `json:"imported"`
	Duplicates int             `json:"duplicates"`
	Errors     int             `json:"errors"`
	Outcomes   []ImportOutcome `json:"details"`
}

func (b *BatchResult) AddImported(idx int, title string, id int64) {
	b.Imported++
	b.Outcomes = append(b.Outcomes, ImportOutcome{Index: idx, Title: title, Status: OutcomeImported, ID: id})
}

func (b *BatchResult) AddDuplicate(idx int, title string, existingID int64) {
	b.Duplicates++
	b.Outcomes = append(b.Outcomes, ImportOutcome{Index: idx, Title: title, Status: OutcomeDuplicate, ExistingID: existingID})
}

func (b *BatchResult) AddError(idx int, title, reason string) {
	b.Errors++
	b.Outcomes = append(b.Outcomes, ImportOutcome{Index: idx, Title: title, Status: OutcomeError, Reason: reason})
}
