package fakerepo

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/casesync.net/internal/core/ports/secondary"
)

var _ secondary.SuiteLocker = (*Locker)(nil)

// Locker is an in-memory secondary.SuiteLocker.
type Locker struct {
	mu      sync.Mutex
	cache   map[string]int64
	Locks   int
	Unlocks int
	LockErr error
}

func NewLocker() *Locker {
	return &Locker{cache: make(map[string]int64)}
}

func key(projectID int64, name string) string {
	return fmt.Sprintf("%d:%s", projectID, name)
}

func (l *Locker) Lock(ctx context.Context, projectID int64, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LockErr != nil {
		return nil, l.LockErr
	}
	l.Locks++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.Unlocks++
	}, nil
}

func (l *Locker) CachedSuiteID(ctx context.Context, projectID int64, name string) (int64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.cache[key(projectID, name)]
	return id, ok, nil
}

func (l *Locker) StoreSuiteID(ctx context.Context, projectID int64, name string, suiteID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key(projectID, name)] = suiteID
	return nil
}
