package domain

// Scenario is a scenario title and its ordered tags as found in a feature document.
type Scenario struct {
	Title string
	Tags  []string
	// Path and Line locate the "Scenario:" line; Line is 1-based.
	Path string
	Line int
}

// Outcome is what the test runner tells us when a scenario finishes.
type Outcome struct {
	Failed  bool
	Message string
}
