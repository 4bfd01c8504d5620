// Package integration wires suite resolution, the run lifecycle and the reporter into
// the one object a test process creates at suite start and tears down at suite end.
package integration

import (
	"context"

	"gitlab.com/casesync.net/internal/adapter/testrail"
	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/core/services/report"
	"gitlab.com/casesync.net/internal/core/services/runlifecycle"
	"gitlab.com/casesync.net/internal/core/services/suite"
)

type Option func(*options)

type options struct {
	repo   secondary.RemoteTestRepository
	locker secondary.SuiteLocker
}

// WithRepository replaces the HTTP client, mostly for tests.
func WithRepository(repo secondary.RemoteTestRepository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithSuiteLocker shares suite resolution with other processes.
func WithSuiteLocker(locker secondary.SuiteLocker) Option {
	return func(o *options) {
		o.locker = locker
	}
}

type Session struct {
	logger   primary.Logger
	resolver *suite.Resolver
	runs     *runlifecycle.Manager
	reporter *report.Reporter
}

// NewSession validates cfg and builds the pipeline. An enabled but invalid config
// returns a disabled session together with an errs.ErrConfiguration error, so the
// caller can log it and keep testing without reporting.
func NewSession(cfg *config.TestRailConfig, clientCfg *config.ClientConfig, logger primary.Logger, opts ...Option) (*Session, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("TestRail configuration invalid, reporting disabled", "error", err)
		return disabledSession(logger), err
	}
	if !cfg.Enabled {
		logger.Info("TestRail integration is disabled")
		return disabledSession(logger), nil
	}

	repo := o.repo
	if repo == nil {
		repo = testrail.NewClient(cfg, clientCfg, logger)
	}

	runs := runlifecycle.NewManager(repo, cfg.ProjectID, true, logger)
	return &Session{
		logger:   logger,
		resolver: suite.NewResolver(repo, o.locker, cfg.ProjectID, logger),
		runs:     runs,
		reporter: report.NewReporter(runs, repo, logger),
	}, nil
}

func disabledSession(logger primary.Logger) *Session {
	runs := runlifecycle.NewManager(nil, 0, false, logger)
	return &Session{
		logger:   logger,
		runs:     runs,
		reporter: report.NewReporter(runs, nil, logger),
	}
}

// Begin resolves the suite and opens the run. It must complete before the first
// scenario starts. Errors are fatal to reporting only.
func (s *Session) Begin(ctx context.Context, sc config.SuiteConfig, caseIDs []int64) error {
	if !s.runs.Enabled() {
		return nil
	}

	suiteID, err := s.resolver.Resolve(ctx, sc.Name, sc.Description)
	if err != nil {
		return err
	}
	if err := s.runs.Open(ctx, sc.Label, suiteID, caseIDs); err != nil {
		return err
	}
	s.logger.Info("TestRail reporter initialized", "suite", sc.Name, "suiteId", suiteID)
	return nil
}

// End closes the run if one is open.
func (s *Session) End(ctx context.Context) {
	s.runs.Close(ctx)
}

// Hooks is handed to the test runner.
func (s *Session) Hooks() primary.ScenarioHooks {
	return s.reporter
}

func (s *Session) Runs() *runlifecycle.Manager {
	return s.runs
}
