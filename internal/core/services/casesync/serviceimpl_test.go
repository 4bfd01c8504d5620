package casesync

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/casesync.net/internal/adapter/logging"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/static/errs"
	"gitlab.com/casesync.net/internal/testing/fakerepo"
)

func scenarios(list ...domain.Scenario) iter.Seq[domain.Scenario] {
	return slices.Values(list)
}

func TestSyncCreatesCriticalCaseForSmokeScenario(t *testing.T) {
	repo := fakerepo.New()
	repo.StartIDsAt(42)
	s := NewSynchronizer(repo, logging.NewNopLogger())

	report, err := s.Sync(context.Background(), 9, scenarios(
		domain.Scenario{Title: "Valid login", Tags: []string{"@Smoke"}, Path: "ui/login.feature", Line: 8},
	))

	require.NoError(t, err)
	require.Len(t, repo.CaseCalls, 1)
	assert.Equal(t, fakerepo.CreateCaseCall{SuiteID: 9, Title: "Valid login", IsSmoke: true}, repo.CaseCalls[0])
	assert.Equal(t, domain.PriorityCritical, domain.PriorityFor(repo.CaseCalls[0].IsSmoke))

	require.Len(t, report.Actions, 1)
	action := report.Actions[0]
	assert.Equal(t, int64(42), action.CaseID)
	assert.Equal(t, "@C42", action.Tag)
	assert.Equal(t, "ui/login.feature", action.SourcePath)
	assert.Equal(t, 8, action.Line)
	assert.True(t, action.Pending())
	assert.Equal(t, 1, report.Created)
}

func TestSyncSkipsMappedScenario(t *testing.T) {
	repo := fakerepo.New()
	s := NewSynchronizer(repo, logging.NewNopLogger())

	report, err := s.Sync(context.Background(), 9, scenarios(
		domain.Scenario{Title: "Locked out user", Tags: []string{"@Regression", "@C17"}},
	))

	require.NoError(t, err)
	assert.Empty(t, repo.CaseCalls)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Actions)
}

func TestSyncSkipsScenarioWithUnusableMarker(t *testing.T) {
	repo := fakerepo.New()
	s := NewSynchronizer(repo, logging.NewNopLogger())

	report, err := s.Sync(context.Background(), 9, scenarios(
		domain.Scenario{Title: "Zero id", Tags: []string{"@Regression", "@C0"}},
		domain.Scenario{Title: "Huge id", Tags: []string{"@Regression", "@C99999999999999999999999"}},
	))

	require.NoError(t, err)
	assert.Empty(t, repo.CaseCalls)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Actions)
}

func TestSyncMakesExactlyOneCallPerUnmappedScenario(t *testing.T) {
	repo := fakerepo.New()
	s := NewSynchronizer(repo, logging.NewNopLogger())

	input := []domain.Scenario{
		{Title: "A", Tags: nil},
		{Title: "B", Tags: []string{"@C3"}},
		{Title: "C", Tags: []string{"@API"}},
		{Title: "A", Tags: []string{"@Regression"}},
	}
	report, err := s.Sync(context.Background(), 1, scenarios(input...))

	require.NoError(t, err)
	titles := make([]string, 0, len(repo.CaseCalls))
	for _, call := range repo.CaseCalls {
		titles = append(titles, call.Title)
		assert.False(t, call.IsSmoke)
	}
	assert.Equal(t, []string{"A", "C", "A"}, titles)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, 1, report.Skipped)
}

func TestSyncContinuesAfterCaseCreationFailure(t *testing.T) {
	repo := fakerepo.New()
	repo.FailingTitles["Broken"] = true
	core, logs := observer.New(zap.InfoLevel)
	s := NewSynchronizer(repo, logging.NewZapLoggerWithCore(core))

	report, err := s.Sync(context.Background(), 1, scenarios(
		domain.Scenario{Title: "Broken"},
		domain.Scenario{Title: "Healthy"},
	))

	require.NoError(t, err)
	assert.Len(t, repo.CaseCalls, 2)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, "Healthy", report.Actions[0].Title)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Broken", failures[0].Scenario.Title)
	assert.ErrorIs(t, failures[0].Err, errs.ErrCaseCreation)
	assert.ErrorIs(t, failures[0].Err, fakerepo.ErrUnavailable)
	assert.Zero(t, failures[0].CaseID)

	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestSyncSecondPassIsIdempotentOnceTagsAreApplied(t *testing.T) {
	repo := fakerepo.New()
	s := NewSynchronizer(repo, logging.NewNopLogger())

	first, err := s.Sync(context.Background(), 1, scenarios(domain.Scenario{Title: "Valid login"}))
	require.NoError(t, err)
	require.Len(t, first.Actions, 1)

	tagged := domain.Scenario{Title: "Valid login", Tags: []string{first.Actions[0].Tag}}
	second, err := s.Sync(context.Background(), 1, scenarios(tagged))
	require.NoError(t, err)

	assert.Len(t, repo.CaseCalls, 1)
	assert.Equal(t, 1, second.Skipped)
}

func TestSyncStopsOnCancelledContext(t *testing.T) {
	repo := fakerepo.New()
	s := NewSynchronizer(repo, logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.Sync(ctx, 1, scenarios(domain.Scenario{Title: "A"}))

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, repo.CaseCalls)
}
