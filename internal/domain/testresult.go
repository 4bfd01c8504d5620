package domain

import "fmt"

// StatusID is the TestRail result status vocabulary.
type StatusID int

const (
	StatusPassed   StatusID = 1
	StatusBlocked  StatusID = 2
	StatusUntested StatusID = 3
	StatusRetest   StatusID = 4
	StatusFailed   StatusID = 5
)

func (s StatusID) String() string {
	switch s {
	case StatusPassed:
		return "PASSED"
	case StatusFailed:
		return "FAILED"
	case StatusBlocked:
		return "BLOCKED"
	case StatusRetest:
		return "RETEST"
	default:
		return "UNTESTED"
	}
}

// Result is one case outcome inside a run. It is written once and never read back.
type Result struct {
	CaseID         int64
	StatusID       StatusID
	Comment        string
	ElapsedSeconds int64
}

// Elapsed renders the TestRail timespan, empty when there is nothing to report.
func (r Result) Elapsed() string {
	if r.ElapsedSeconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%ds", r.ElapsedSeconds)
}
