package domain

import (
	"time"

	"github.com/google/uuid"
)

// TagAction asks for a case-id tag to be appended to a scenario in its source document.
type TagAction struct {
	ID         uuid.UUID  `db:"id" yaml:"id"`
	SuiteID    int64      `db:"suite_id" yaml:"suite_id"`
	CaseID     int64      `db:"case_id" yaml:"case_id"`
	Tag        string     `db:"tag" yaml:"tag"`
	Title      string     `db:"title" yaml:"title"`
	SourcePath string     `db:"source_path" yaml:"source_path"`
	Line       int        `db:"line" yaml:"line"`
	CreatedAt  time.Time  `db:"created_at" yaml:"created_at"`
	AppliedAt  *time.Time `db:"applied_at" yaml:"applied_at,omitempty"`
}

// NewTagAction creates a pending action for a freshly created case.
func NewTagAction(suiteID, caseID int64, tag string, scenario Scenario) TagAction {
	return TagAction{
		ID:         uuid.New(),
		SuiteID:    suiteID,
		CaseID:     caseID,
		Tag:        tag,
		Title:      scenario.Title,
		SourcePath: scenario.Path,
		Line:       scenario.Line,
		CreatedAt:  time.Now().UTC(),
	}
}

// Pending reports whether the tag has not been written back yet.
func (a TagAction) Pending() bool {
	return a.AppliedAt == nil
}

type TagActionTable struct {
	ID         string
	SuiteID    string
	CaseID     string
	Tag        string
	Title      string
	SourcePath string
	Line       string
	CreatedAt  string
	AppliedAt  string
}

func GetTagActionTable() TagActionTable {
	return TagActionTable{
		ID:         "id",
		SuiteID:    "suite_id",
		CaseID:     "case_id",
		Tag:        "tag",
		Title:      "title",
		SourcePath: "source_path",
		Line:       "line",
		CreatedAt:  "created_at",
		AppliedAt:  "applied_at",
	}
}

func (TagActionTable) TableName() string {
	return "case_tag_actions"
}
