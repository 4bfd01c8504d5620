package casesync

import (
	"context"
	"fmt"
	"iter"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/core/services/casetag"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/static/errs"
)

var _ ICaseSynchronizer = (*Synchronizer)(nil)

// Synchronizer is best effort per scenario: one failed creation never blocks the rest.
type Synchronizer struct {
	repo   secondary.RemoteTestRepository
	logger primary.Logger
}

func NewSynchronizer(repo secondary.RemoteTestRepository, logger primary.Logger) *Synchronizer {
	return &Synchronizer{
		repo:   repo,
		logger: logger,
	}
}

// Sync only fails when ctx is cancelled; the partial report is returned with the error.
func (s *Synchronizer) Sync(ctx context.Context, suiteID int64, scenarios iter.Seq[domain.Scenario]) (*Report, error) {
	report := &Report{SuiteID: suiteID}

	for scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Synchronization interrupted", "suiteId", suiteID, "error", err)
			return report, err
		}
		report.Scanned++

		if casetag.HasKnownCaseID(scenario.Tags) {
			id, _ := casetag.ExtractCaseID(scenario.Tags)
			s.logger.Info("Skipping scenario, already mapped",
				"title", scenario.Title,
				"caseId", id,
				"path", scenario.Path)
			report.Skipped++
			continue
		}

		outcome := s.createCase(ctx, suiteID, scenario)
		report.Outcomes = append(report.Outcomes, outcome)
		if !outcome.Created() {
			report.Failed++
			continue
		}

		tag := casetag.FormatCaseIDTag(outcome.CaseID)
		report.Actions = append(report.Actions, domain.NewTagAction(suiteID, outcome.CaseID, tag, scenario))
		report.Created++
		s.logger.Info("Created case",
			"title", scenario.Title,
			"caseId", outcome.CaseID,
			"tag", tag,
			"path", scenario.Path,
			"line", scenario.Line)
	}

	s.logger.Info("Synchronization pass finished",
		"suiteId", suiteID,
		"scanned", report.Scanned,
		"skipped", report.Skipped,
		"created", report.Created,
		"failed", report.Failed)
	return report, nil
}

func (s *Synchronizer) createCase(ctx context.Context, suiteID int64, scenario domain.Scenario) domain.CaseCreation {
	outcome := domain.CaseCreation{Scenario: scenario}

	c, err := s.repo.CreateCase(ctx, suiteID, scenario.Title, casetag.IsSmoke(scenario.Tags))
	switch {
	case err != nil:
		outcome.Err = fmt.Errorf("%w: %w", errs.ErrCaseCreation, err)
	case c == nil || c.ID <= 0:
		outcome.Err = fmt.Errorf("%w: remote returned no case id", errs.ErrCaseCreation)
	default:
		outcome.CaseID = c.ID
		return outcome
	}

	s.logger.Error("Failed to create case, scenario left unmapped",
		"title", scenario.Title,
		"path", scenario.Path,
		"error", outcome.Err)
	return outcome
}
