package domain

// RunState is the lifecycle state of the single run owned by a test process.
type RunState int

const (
	RunStateIdle RunState = iota
	RunStateOpen
	RunStateClosed
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "IDLE"
	case RunStateOpen:
		return "OPEN"
	case RunStateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Run groups cases for one test execution.
type Run struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SuiteID     int64   `json:"suite_id"`
	IncludeAll  bool    `json:"include_all"`
	CaseIDs     []int64 `json:"case_ids,omitempty"`
	IsCompleted bool    `json:"is_completed"`
}

// NewRun builds a run request. IncludeAll is derived from the absence of case ids.
func NewRun(name, description string, suiteID int64, caseIDs []int64) *Run {
	return &Run{
		Name:        name,
		Description: description,
		SuiteID:     suiteID,
		IncludeAll:  len(caseIDs) == 0,
		CaseIDs:     caseIDs,
	}
}
