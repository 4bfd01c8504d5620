// Package report posts scenario outcomes to the open TestRail run. Nothing in here
// is allowed to change the verdict of the scenario it reports on.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/core/services/casetag"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/static/errs"
)

const passedComment = "Test passed successfully"

// RunState is the part of the run lifecycle the reporter reads.
type RunState interface {
	Enabled() bool
	ActiveRunID() (int64, bool)
}

var _ primary.ScenarioHooks = (*Reporter)(nil)

type execution struct {
	scenario  domain.Scenario
	caseID    int64
	mapped    bool
	startedAt time.Time
}

type Reporter struct {
	runs   RunState
	repo   secondary.RemoteTestRepository
	logger primary.Logger
	now    func() time.Time

	// executions is keyed by execution id, never by title: titles repeat.
	executions sync.Map
}

func NewReporter(runs RunState, repo secondary.RemoteTestRepository, logger primary.Logger) *Reporter {
	return &Reporter{
		runs:   runs,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the wall clock used to measure scenario duration.
func (r *Reporter) SetClock(now func() time.Time) {
	r.now = now
}

// ScenarioStarted resolves the case id from the scenario tags and starts the clock.
func (r *Reporter) ScenarioStarted(ctx context.Context, scenario domain.Scenario) uuid.UUID {
	id := uuid.New()
	exec := &execution{scenario: scenario, startedAt: r.now()}

	if caseID, ok := casetag.ExtractCaseID(scenario.Tags); ok {
		exec.caseID = caseID
		exec.mapped = true
		r.logger.Debug("Mapped scenario to case", "title", scenario.Title, "caseId", caseID, "executionId", id)
	} else {
		r.logger.Debug("No case id for scenario, result will not be reported", "title", scenario.Title, "executionId", id)
	}

	r.executions.Store(id, exec)
	return id
}

// ScenarioAborted drops the execution; an aborted scenario has no result.
func (r *Reporter) ScenarioAborted(executionID uuid.UUID) {
	if v, ok := r.executions.LoadAndDelete(executionID); ok {
		r.logger.Info("Scenario aborted, no result reported", "title", v.(*execution).scenario.Title, "executionId", executionID)
	}
}

// ScenarioFinished submits the result when integration is enabled, the run is open
// and the scenario is mapped. Failures end up in the log only.
func (r *Reporter) ScenarioFinished(ctx context.Context, executionID uuid.UUID, outcome domain.Outcome) {
	v, ok := r.executions.LoadAndDelete(executionID)
	if !ok {
		r.logger.Warn("Finished scenario was never started", "executionId", executionID)
		return
	}
	exec := v.(*execution)

	if !r.runs.Enabled() {
		return
	}
	runID, open := r.runs.ActiveRunID()
	if !open {
		r.logger.Debug("No open run, result not reported", "title", exec.scenario.Title)
		return
	}
	if !exec.mapped {
		r.logger.Debug("No case id found for scenario", "title", exec.scenario.Title)
		return
	}

	result := r.buildResult(exec, outcome)
	if err := r.submit(ctx, runID, result); err != nil {
		r.logger.Error("Failed to report result",
			"title", exec.scenario.Title,
			"runId", runID,
			"caseId", result.CaseID,
			"error", err)
		return
	}

	r.logger.Info("Reported result",
		"title", exec.scenario.Title,
		"runId", runID,
		"caseId", result.CaseID,
		"status", result.StatusID.String(),
		"elapsed", result.Elapsed())
}

func (r *Reporter) buildResult(exec *execution, outcome domain.Outcome) domain.Result {
	result := domain.Result{
		CaseID:         exec.caseID,
		StatusID:       domain.StatusPassed,
		Comment:        passedComment,
		ElapsedSeconds: int64(r.now().Sub(exec.startedAt) / time.Second),
	}
	if result.ElapsedSeconds < 0 {
		result.ElapsedSeconds = 0
	}
	if outcome.Failed {
		result.StatusID = domain.StatusFailed
		result.Comment = "Test failed: " + exec.scenario.Title
		if outcome.Message != "" {
			result.Comment += "\n\n" + outcome.Message
		}
	}
	return result
}

// submit converts both errors and panics from the repository into an error.
func (r *Reporter) submit(ctx context.Context, runID int64, result domain.Result) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", errs.ErrResultSubmission, p)
		}
	}()
	if err := r.repo.SubmitResult(ctx, runID, result); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrResultSubmission, err)
	}
	return nil
}

// Pending returns the number of started executions that have not finished yet.
func (r *Reporter) Pending() int {
	n := 0
	r.executions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
