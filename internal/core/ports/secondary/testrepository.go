package secondary

import (
	"context"

	"gitlab.com/casesync.net/internal/domain"
)

// RemoteTestRepository is the test-management system of record. Every method is one
// blocking remote call from the caller's perspective.
type RemoteTestRepository interface {
	// FindOrCreateSuite returns the first suite with an exact name match, creating it otherwise
	FindOrCreateSuite(ctx context.Context, projectID int64, name, description string) (int64, error)

	// CreateCase creates a case in the suite; priority is derived from isSmoke
	CreateCase(ctx context.Context, suiteID int64, title string, isSmoke bool) (*domain.Case, error)

	// CreateRun opens a run; include_all is sent when caseIDs is empty
	CreateRun(ctx context.Context, projectID int64, name, description string, suiteID int64, caseIDs []int64) (*domain.Run, error)

	// SubmitResult adds a result for a case within a run
	SubmitResult(ctx context.Context, runID int64, result domain.Result) error

	// CloseRun closes the run
	CloseRun(ctx context.Context, runID int64) error
}
