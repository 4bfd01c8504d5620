package domain

// Priority mirrors the TestRail priority_id vocabulary we create cases with.
type Priority int

const (
	PriorityMedium   Priority = 2
	PriorityCritical Priority = 4
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityMedium:
		return "Medium"
	default:
		return "Unknown"
	}
}

// CaseTypeAutomated is the TestRail type_id for automated cases.
const CaseTypeAutomated = 1

// Case represents a remote test case created from a scenario title.
type Case struct {
	ID       int64    `json:"id"`
	SuiteID  int64    `json:"suite_id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority_id"`
}

// PriorityFor returns the priority a new case gets for the given smoke flag.
func PriorityFor(isSmoke bool) Priority {
	if isSmoke {
		return PriorityCritical
	}
	return PriorityMedium
}

// CaseCreation is the outcome of one case creation attempt during a synchronization pass.
// Either CaseID is set or Err explains why the scenario stayed unmapped.
type CaseCreation struct {
	Scenario Scenario
	CaseID   int64
	Err      error
}

// Created reports whether the remote side assigned a case id.
func (c CaseCreation) Created() bool {
	return c.Err == nil && c.CaseID > 0
}
