package secondary

import "context"

// SuiteLocker coordinates suite resolution across processes that share a project.
type SuiteLocker interface {
	// Lock blocks until the (project, name) lock is held; the returned func releases it
	Lock(ctx context.Context, projectID int64, name string) (func(), error)

	// CachedSuiteID returns a suite id another process already resolved
	CachedSuiteID(ctx context.Context, projectID int64, name string) (int64, bool, error)

	StoreSuiteID(ctx context.Context, projectID int64, name string, suiteID int64) error
}
