package testrailmock

import (
	"slices"
	"sync"

	"gitlab.com/casesync.net/internal/domain"
)

// RecordedResult is a result as the fake server received it.
type RecordedResult struct {
	RunID    int64
	CaseID   int64
	StatusID domain.StatusID
	Comment  string
	Elapsed  string
}

// Store is the in-memory state behind the fake TestRail API.
type Store struct {
	mu sync.Mutex

	nextID   int64
	suites   map[int64][]domain.Suite
	cases    map[int64]domain.Case
	runs     map[int64]*domain.Run
	results  []RecordedResult
	failures map[string]int
	calls    map[string]int

	// Paginated makes get_suites answer with the {"suites": [...]} envelope.
	Paginated bool
}

func NewStore() *Store {
	return &Store{
		suites:   make(map[int64][]domain.Suite),
		cases:    make(map[int64]domain.Case),
		runs:     make(map[int64]*domain.Run),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// FailEndpoint makes every call to endpoint (e.g. "add_case") answer with status.
// A zero status clears the failure.
func (s *Store) FailEndpoint(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, endpoint)
		return
	}
	s.failures[endpoint] = status
}

func (s *Store) failure(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[endpoint]++
	return s.failures[endpoint]
}

// Calls returns how many requests reached endpoint, failed ones included.
func (s *Store) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// SeedSuite adds a suite directly, e.g. to simulate duplicates created by hand.
func (s *Store) SeedSuite(projectID int64, name, description string) domain.Suite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSuite(projectID, name, description)
}

func (s *Store) addSuite(projectID int64, name, description string) domain.Suite {
	suite := domain.Suite{ID: s.id(), Name: name, Description: description}
	s.suites[projectID] = append(s.suites[projectID], suite)
	return suite
}

func (s *Store) listSuites(projectID int64) []domain.Suite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.suites[projectID])
}

func (s *Store) suiteExists(suiteID int64) bool {
	for _, suites := range s.suites {
		for _, suite := range suites {
			if suite.ID == suiteID {
				return true
			}
		}
	}
	return false
}

func (s *Store) Suites(projectID int64) []domain.Suite {
	return s.listSuites(projectID)
}

func (s *Store) Cases() []domain.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Case, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Case) int { return int(a.ID - b.ID) })
	return out
}

func (s *Store) Run(runID int64) (domain.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return domain.Run{}, false
	}
	return *run, true
}

func (s *Store) Results() []RecordedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}
