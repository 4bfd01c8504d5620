package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/casesync.net/internal/adapter/logging"
	"gitlab.com/casesync.net/internal/adapter/testrail"
	"gitlab.com/casesync.net/internal/adapter/yamlreport"
	"gitlab.com/casesync.net/internal/config"
	"gitlab.com/casesync.net/internal/core/services/casetag"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/handlers/testrailmock"
	"gitlab.com/casesync.net/internal/static/errs"
	"gitlab.com/casesync.net/internal/testing/fakerepo"
)

const productsFeature = `@API
Feature: Products

  @Smoke
  Scenario: List products
    When I request all products

  @C55
  Scenario: Get single product
    When I request product 1

  Scenario: Filter by category
    When I filter by "jewelery"
`

const loginFeature = `Feature: Login

  Scenario: Valid login
    When I log in
`

func newCorpus(t *testing.T) *config.CorpusConfig {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("api/products.feature", productsFeature)
	write("ui/login.feature", loginFeature)

	return &config.CorpusConfig{
		Root: root,
		Suites: []config.SuiteConfig{
			apiSuite,
			{Label: "UI", Name: "UI Test Automation", Description: "UI tests", Path: "ui"},
		},
	}
}

func TestPipelineSyncRecordsActionsAndApplyTagsWritesThem(t *testing.T) {
	ctx := context.Background()
	corpus := newCorpus(t)
	repo := fakerepo.New()
	ledger := yamlreport.NewStore(filepath.Join(t.TempDir(), "report.yaml"), logging.NewNopLogger())
	p := NewPipeline(corpus, repo, nil, 3, logging.NewNopLogger(), ledger)

	reports, err := p.Sync(ctx, corpus.Suites)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 3, reports[0].Scanned)
	assert.Equal(t, 1, reports[0].Skipped)
	assert.Equal(t, 2, reports[0].Created)
	assert.Equal(t, 1, reports[1].Created)

	pending, err := ledger.PendingActions(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	applied, err := ApplyTags(ctx, ledger, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	pending, err = ledger.PendingActions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	again, err := p.Sync(ctx, corpus.Suites)
	require.NoError(t, err)
	assert.Zero(t, again[0].Created)
	assert.Zero(t, again[1].Created)
	assert.Len(t, repo.CreatedCases(), 3)

	applied, err = ApplyTags(ctx, ledger, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestPipelineSyncFailsOnUnresolvableSuite(t *testing.T) {
	corpus := newCorpus(t)
	repo := fakerepo.New()
	repo.SuiteErr = fakerepo.ErrUnavailable
	p := NewPipeline(corpus, repo, nil, 3, logging.NewNopLogger())

	_, err := p.Sync(context.Background(), corpus.Suites[:1])
	assert.ErrorIs(t, err, errs.ErrSuiteResolution)
	assert.Empty(t, repo.CreatedCases())
}

func TestPipelineKeepsGoingWhenACaseFails(t *testing.T) {
	corpus := newCorpus(t)
	repo := fakerepo.New()
	repo.FailingTitles["List products"] = true
	p := NewPipeline(corpus, repo, nil, 3, logging.NewNopLogger())

	reports, err := p.Sync(context.Background(), corpus.Suites[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, reports[0].Failed)
	assert.Equal(t, 1, reports[0].Created)
	require.Len(t, reports[0].Failures(), 1)
	assert.ErrorIs(t, reports[0].Failures()[0].Err, errs.ErrCaseCreation)
}

// Full round trip over HTTP: sync, write tags back, then report a test run.
func TestEndToEndAgainstFakeServer(t *testing.T) {
	ctx := context.Background()
	store := testrailmock.NewStore()
	srv := httptest.NewServer(testrailmock.NewHandler(store, "qa@example.com", "secret", logging.NewNopLogger()).Router())
	t.Cleanup(srv.Close)

	cfg := enabledConfig()
	cfg.Url = srv.URL
	corpus := newCorpus(t)
	client := testrail.NewClient(cfg, clientConfig(), logging.NewNopLogger())
	ledger := yamlreport.NewStore(filepath.Join(t.TempDir(), "report.yaml"), logging.NewNopLogger())

	_, err := NewPipeline(corpus, client, nil, cfg.ProjectID, logging.NewNopLogger(), ledger).Sync(ctx, corpus.Suites[:1])
	require.NoError(t, err)
	_, err = ApplyTags(ctx, ledger, logging.NewNopLogger())
	require.NoError(t, err)

	cases := store.Cases()
	require.Len(t, cases, 2)
	assert.Equal(t, domain.PriorityCritical, cases[0].Priority)
	assert.Equal(t, domain.PriorityMedium, cases[1].Priority)

	session, err := NewSession(cfg, clientConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, session.Begin(ctx, apiSuite, nil))
	runID, open := session.Runs().ActiveRunID()
	require.True(t, open)

	data, err := os.ReadFile(filepath.Join(corpus.Root, "api", "products.feature"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "@Smoke @C")

	exec := session.Hooks().ScenarioStarted(ctx, domain.Scenario{
		Title: "List products",
		Tags:  []string{"@API", "@Smoke", casetag.FormatCaseIDTag(cases[0].ID)},
	})
	session.Hooks().ScenarioFinished(ctx, exec, domain.Outcome{})
	session.End(ctx)

	results := store.Results()
	require.Len(t, results, 1)
	assert.Equal(t, runID, results[0].RunID)
	assert.Equal(t, cases[0].ID, results[0].CaseID)
	assert.Equal(t, domain.StatusPassed, results[0].StatusID)

	run, ok := store.Run(runID)
	require.True(t, ok)
	assert.True(t, run.IsCompleted)
	assert.Equal(t, 1, store.Calls("add_run"))
}
