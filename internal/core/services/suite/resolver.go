package suite

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/static/errs"
)

// Resolver finds or creates named suites for one project and remembers the ids
// for the rest of the process.
type Resolver struct {
	repo      secondary.RemoteTestRepository
	locker    secondary.SuiteLocker
	projectID int64
	logger    primary.Logger

	mu       sync.Mutex
	resolved map[string]int64
	// one lock per suite name: a name resolves once, different names in parallel
	nameLocks map[string]*sync.Mutex
}

// NewResolver creates a resolver; locker may be nil for in-process resolution only.
func NewResolver(repo secondary.RemoteTestRepository, locker secondary.SuiteLocker, projectID int64, logger primary.Logger) *Resolver {
	return &Resolver{
		repo:      repo,
		locker:    locker,
		projectID: projectID,
		logger:    logger,
		resolved:  make(map[string]int64),
		nameLocks: make(map[string]*sync.Mutex),
	}
}

// Resolve returns the suite id for name, resolving it remotely on first use.
func (r *Resolver) Resolve(ctx context.Context, name, description string) (int64, error) {
	nameLock := r.nameLock(name)
	nameLock.Lock()
	defer nameLock.Unlock()

	if id, ok := r.SuiteID(name); ok {
		return id, nil
	}

	id, err := r.resolveShared(ctx, name, description)
	if err != nil {
		r.logger.Error("Failed to resolve suite", "suite", name, "projectId", r.projectID, "error", err)
		return 0, fmt.Errorf("%w: %q: %w", errs.ErrSuiteResolution, name, err)
	}

	r.mu.Lock()
	r.resolved[name] = id
	r.mu.Unlock()
	r.logger.Info("Resolved suite", "suite", name, "suiteId", id)
	return id, nil
}

func (r *Resolver) nameLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.nameLocks[name]
	if !ok {
		l = &sync.Mutex{}
		r.nameLocks[name] = l
	}
	return l
}

// SuiteID returns an already resolved id without any remote call.
func (r *Resolver) SuiteID(name string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolved[name]
	return id, ok
}

func (r *Resolver) resolveShared(ctx context.Context, name, description string) (int64, error) {
	if r.locker == nil {
		return r.repo.FindOrCreateSuite(ctx, r.projectID, name, description)
	}

	if id, ok, err := r.locker.CachedSuiteID(ctx, r.projectID, name); err != nil {
		r.logger.Warn("Suite cache unavailable", "suite", name, "error", err)
	} else if ok {
		r.logger.Debug("Suite id taken from shared cache", "suite", name, "suiteId", id)
		return id, nil
	}

	unlock, err := r.locker.Lock(ctx, r.projectID, name)
	if err != nil {
		r.logger.Warn("Suite lock unavailable, resolving without it", "suite", name, "error", err)
		return r.repo.FindOrCreateSuite(ctx, r.projectID, name, description)
	}
	defer unlock()

	id, err := r.repo.FindOrCreateSuite(ctx, r.projectID, name, description)
	if err != nil {
		return 0, err
	}
	if err := r.locker.StoreSuiteID(ctx, r.projectID, name, id); err != nil {
		r.logger.Warn("Failed to cache suite id", "suite", name, "error", err)
	}
	return id, nil
}
