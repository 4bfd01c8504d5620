package domain

// Suite is a named grouping of cases inside a TestRail project.
type Suite struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
