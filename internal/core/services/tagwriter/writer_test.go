package tagwriter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/casesync.net/internal/adapter/logging"
	"gitlab.com/casesync.net/internal/core/services/casesync"
	"gitlab.com/casesync.net/internal/core/services/casetag"
	"gitlab.com/casesync.net/internal/core/services/scanner"
	"gitlab.com/casesync.net/internal/domain"
	"gitlab.com/casesync.net/internal/testing/fakerepo"
)

const cartFeature = `Feature: Cart

  @Smoke
  Scenario: Add item
    When I add an item

  Scenario: Remove item
    When I remove an item
`

func writeFeature(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.feature")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func action(path, title string, line int, caseID int64) domain.TagAction {
	return domain.NewTagAction(1, caseID, casetag.FormatCaseIDTag(caseID), domain.Scenario{Title: title, Path: path, Line: line})
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyAppendsToExistingTagLineAndInsertsNewOne(t *testing.T) {
	path := writeFeature(t, cartFeature)
	actions := []domain.TagAction{
		action(path, "Add item", 4, 11),
		action(path, "Remove item", 7, 12),
	}

	applied, err := New(logging.NewNopLogger()).Apply(actions)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{actions[0].ID, actions[1].ID}, applied)

	want := `Feature: Cart

  @Smoke @C11
  Scenario: Add item
    When I add an item

  @C12
  Scenario: Remove item
    When I remove an item
`
	assert.Equal(t, want, read(t, path))
}

func TestApplyFindsMovedScenarioByTitle(t *testing.T) {
	path := writeFeature(t, cartFeature)
	a := action(path, "Remove item", 2, 12)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{a})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, applied)
	assert.Contains(t, read(t, path), "  @C12\n  Scenario: Remove item")
}

func TestApplyKeepsOrderOfRepeatedTitlesInShiftedFile(t *testing.T) {
	path := writeFeature(t, "# note\nFeature: F\n  Scenario: Same\n    Given a\n  Scenario: Same\n    Given b\n")
	first := action(path, "Same", 2, 10)
	second := action(path, "Same", 4, 11)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{second, first})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, applied)

	want := "# note\nFeature: F\n  @C10\n  Scenario: Same\n    Given a\n  @C11\n  Scenario: Same\n    Given b\n"
	assert.Equal(t, want, read(t, path))
}

func TestApplyLeavesActionPendingWhenScenarioMappedElsewhere(t *testing.T) {
	content := "Feature: Cart\n\n  @C99\n  Scenario: Add item\n"
	path := writeFeature(t, content)
	a := action(path, "Add item", 4, 11)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{a})
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, content, read(t, path))
}

func TestApplySkipsAlreadyTaggedScenario(t *testing.T) {
	content := "Feature: Cart\n\n  @C11\n  Scenario: Add item\n"
	path := writeFeature(t, content)
	a := action(path, "Add item", 4, 11)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{a})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, applied)
	assert.Equal(t, content, read(t, path))
}

func TestApplyLeavesMissingScenarioPending(t *testing.T) {
	path := writeFeature(t, cartFeature)
	a := action(path, "Checkout", 4, 13)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{a})
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, cartFeature, read(t, path))
}

func TestApplyPreservesCarriageReturns(t *testing.T) {
	path := writeFeature(t, "Feature: Cart\r\n  @Smoke\r\n  Scenario: Add item\r\n")
	a := action(path, "Add item", 3, 11)

	_, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{a})
	require.NoError(t, err)
	assert.Equal(t, "Feature: Cart\r\n  @Smoke @C11\r\n  Scenario: Add item\r\n", read(t, path))
}

func TestApplyIgnoresAppliedActionsAndReportsUnreadableFiles(t *testing.T) {
	path := writeFeature(t, cartFeature)
	done := action(path, "Add item", 4, 11)
	now := done.CreatedAt
	done.AppliedAt = &now
	missing := action(filepath.Join(t.TempDir(), "gone.feature"), "Add item", 4, 14)

	applied, err := New(logging.NewNopLogger()).Apply([]domain.TagAction{done, missing})
	assert.Error(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, cartFeature, read(t, path))
}

func TestAppliedTagsMakeNextSyncIdempotent(t *testing.T) {
	path := writeFeature(t, cartFeature)
	root := filepath.Dir(path)
	repo := fakerepo.New()
	sync := casesync.NewSynchronizer(repo, logging.NewNopLogger())
	scan := scanner.New(root, logging.NewNopLogger())

	first, err := sync.Sync(context.Background(), 1, scan.Scenarios(context.Background()))
	require.NoError(t, err)
	require.Len(t, first.Actions, 2)

	_, err = New(logging.NewNopLogger()).Apply(first.Actions)
	require.NoError(t, err)

	second, err := sync.Sync(context.Background(), 1, scan.Scenarios(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, repo.CreatedCases(), 2)
}
