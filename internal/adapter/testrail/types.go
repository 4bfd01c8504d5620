package testrail

import "gitlab.com/casesync.net/internal/domain"

type suiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type caseRequest struct {
	Title      string          `json:"title"`
	TypeID     int             `json:"type_id"`
	PriorityID domain.Priority `json:"priority_id"`
}

type runRequest struct {
	SuiteID     int64   `json:"suite_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	IncludeAll  bool    `json:"include_all"`
	CaseIDs     []int64 `json:"case_ids,omitempty"`
}

type resultRequest struct {
	StatusID domain.StatusID `json:"status_id"`
	Comment  string          `json:"comment,omitempty"`
	Elapsed  string          `json:"elapsed,omitempty"`
}
