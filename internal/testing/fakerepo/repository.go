// Package fakerepo is an in-memory secondary.RemoteTestRepository for service tests.
package fakerepo

import (
	"context"
	"errors"
	"sync"

	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
)

var _ secondary.RemoteTestRepository = (*Repository)(nil)

// ErrUnavailable is returned by failing operations unless a specific error is set.
var ErrUnavailable = errors.New("fake testrail unavailable")

type CreateCaseCall struct {
	SuiteID int64
	Title   string
	IsSmoke bool
}

type CreateRunCall struct {
	ProjectID   int64
	Name        string
	Description string
	SuiteID     int64
	CaseIDs     []int64
	IncludeAll  bool
}

type SubmitCall struct {
	RunID  int64
	Result domain.Result
}

type Repository struct {
	mu sync.Mutex

	Suites map[string]int64
	nextID int64

	SuiteCalls  int
	CaseCalls   []CreateCaseCall
	RunCalls    []CreateRunCall
	SubmitCalls []SubmitCall
	CloseCalls  []int64

	// Failing titles make CreateCase return ErrUnavailable.
	FailingTitles map[string]bool
	SuiteErr      error
	RunErr        error
	SubmitErr     error
	CloseErr      error
	// SubmitPanic makes SubmitResult panic instead of returning.
	SubmitPanic bool
}

func New() *Repository {
	return &Repository{
		Suites:        make(map[string]int64),
		FailingTitles: make(map[string]bool),
		nextID:        100,
	}
}

// StartIDsAt makes the next assigned id equal to id.
func (r *Repository) StartIDsAt(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = id - 1
}

func (r *Repository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *Repository) FindOrCreateSuite(ctx context.Context, projectID int64, name, description string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SuiteCalls++
	if r.SuiteErr != nil {
		return 0, r.SuiteErr
	}
	if id, ok := r.Suites[name]; ok {
		return id, nil
	}
	id := r.id()
	r.Suites[name] = id
	return id, nil
}

func (r *Repository) CreateCase(ctx context.Context, suiteID int64, title string, isSmoke bool) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CaseCalls = append(r.CaseCalls, CreateCaseCall{SuiteID: suiteID, Title: title, IsSmoke: isSmoke})
	if r.FailingTitles[title] {
		return nil, ErrUnavailable
	}
	return &domain.Case{
		ID:       r.id(),
		SuiteID:  suiteID,
		Title:    title,
		Priority: domain.PriorityFor(isSmoke),
	}, nil
}

func (r *Repository) CreateRun(ctx context.Context, projectID int64, name, description string, suiteID int64, caseIDs []int64) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := domain.NewRun(name, description, suiteID, caseIDs)
	r.RunCalls = append(r.RunCalls, CreateRunCall{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		SuiteID:     suiteID,
		CaseIDs:     caseIDs,
		IncludeAll:  run.IncludeAll,
	})
	if r.RunErr != nil {
		return nil, r.RunErr
	}
	run.ID = r.id()
	return run, nil
}

func (r *Repository) SubmitResult(ctx context.Context, runID int64, result domain.Result) error {
	r.mu.Lock()
	r.SubmitCalls = append(r.SubmitCalls, SubmitCall{RunID: runID, Result: result})
	err, panics := r.SubmitErr, r.SubmitPanic
	r.mu.Unlock()
	if panics {
		panic("fake transport exploded")
	}
	return err
}

func (r *Repository) CloseRun(ctx context.Context, runID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CloseCalls = append(r.CloseCalls, runID)
	return r.CloseErr
}

// Submits returns a copy of the recorded SubmitResult calls.
func (r *Repository) Submits() []SubmitCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SubmitCall(nil), r.SubmitCalls...)
}

// CreatedCases returns a copy of the recorded CreateCase calls.
func (r *Repository) CreatedCases() []CreateCaseCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CreateCaseCall(nil), r.CaseCalls...)
}
