// Package runlifecycle owns the Idle -> Open -> Closed state machine of the single
// TestRail run a test process reports into.
package runlifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/static/errs"
)

const (
	runNameLayout      = "2006-01-02 15:04:05"
	DefaultDescription = "Automated test execution from CI/CD pipeline"
)

// Manager is constructed once per test process and shared with the reporter.
type Manager struct {
	repo      secondary.RemoteTestRepository
	projectID int64
	enabled   bool
	logger    primary.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state domain.RunState
	run   *domain.Run
}

// NewManager creates a manager in the Idle state. When enabled is false every
// operation is a no-op and repo may be nil.
func NewManager(repo secondary.RemoteTestRepository, projectID int64, enabled bool, logger primary.Logger) *Manager {
	return &Manager{
		repo:      repo,
		projectID: projectID,
		enabled:   enabled && repo != nil,
		logger:    logger,
		now:       time.Now,
		state:     domain.RunStateIdle,
	}
}

// SetClock overrides the clock used for run names.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// RunName renders "<label> Test Run - <timestamp>".
func RunName(label string, at time.Time) string {
	return fmt.Sprintf("%s Test Run - %s", label, at.Format(runNameLayout))
}

// Open creates the remote run. It is legal only once, from Idle; a second call is a
// configuration error of the caller and returns errs.ErrRunAlreadyOpen.
func (m *Manager) Open(ctx context.Context, label string, suiteID int64, caseIDs []int64) error {
	if !m.enabled {
		m.logger.Info("TestRail integration is disabled, no run opened")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.RunStateIdle {
		m.logger.Error("Run open requested twice", "state", m.state)
		return fmt.Errorf("%w: state is %s", errs.ErrRunAlreadyOpen, m.state)
	}

	name := RunName(label, m.now())
	run, err := m.repo.CreateRun(ctx, m.projectID, name, DefaultDescription, suiteID, caseIDs)
	if err != nil {
		m.logger.Error("Failed to create run", "name", name, "suiteId", suiteID, "error", err)
		return fmt.Errorf("%w: %q: %w", errs.ErrRunCreation, name, err)
	}
	if run == nil || run.ID <= 0 {
		m.logger.Error("Run created without an id", "name", name)
		return fmt.Errorf("%w: %q: remote returned no run id", errs.ErrRunCreation, name)
	}

	m.run = run
	m.state = domain.RunStateOpen
	m.logger.Info("Opened run", "runId", run.ID, "name", name, "includeAll", run.IncludeAll, "cases", len(caseIDs))
	return nil
}

// Close closes the run when Open. From any other state it only logs a warning.
// Remote failures are logged and the run is considered closed either way.
func (m *Manager) Close(ctx context.Context) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != domain.RunStateOpen {
		m.logger.Warn("No active run to close", "state", m.state)
		return
	}

	runID := m.run.ID
	m.state = domain.RunStateClosed
	if err := m.repo.CloseRun(ctx, runID); err != nil {
		m.logger.Error("Failed to close run", "runId", runID, "error", fmt.Errorf("%w: %w", errs.ErrRunClose, err))
		return
	}
	m.logger.Info("Closed run", "runId", runID)
}

// Enabled reports whether remote integration is switched on.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// ActiveRunID returns the run id while the run is Open.
func (m *Manager) ActiveRunID() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domain.RunStateOpen {
		return 0, false
	}
	return m.run.ID, true
}

func (m *Manager) State() domain.RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
