package casesync

import (
	"context"
	"iter"

	"gitlab.com/casesync.net/internal/domain"
)

// ICaseSynchronizer creates missing TestRail cases for a stream of scenarios.
type ICaseSynchronizer interface {
	// Sync creates a case for every scenario without a case-id tag and returns the
	// tag edits the caller must write back into the corpus
	Sync(ctx context.Context, suiteID int64, scenarios iter.Seq[domain.Scenario]) (*Report, error)
}

// Report summarizes one synchronization pass.
type Report struct {
	SuiteID  int64
	Scanned  int
	Skipped  int
	Created  int
	Failed   int
	Actions  []domain.TagAction
	Outcomes []domain.CaseCreation
}

// Failures returns the creation attempts that left a scenario unmapped.
func (r *Report) Failures() []domain.CaseCreation {
	var out []domain.CaseCreation
	for _, o := range r.Outcomes {
		if !o.Created() {
			out = append(out, o)
		}
	}
	return out
}
