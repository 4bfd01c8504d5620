package suitelock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/casesync.net/internal/core/ports/primary"
	"gitlab.com/casesync.net/internal/core/ports/secondary"
	"gitlab.com/casesync.net/internal/domain"
)

const (
	lockKeyPrefix  = "suite:lock:"
	suiteKeyPrefix = "suite:id:"
	lockExpiration = 30 * time.Second
	suiteCacheTTL  = 24 * time.Hour
	pollInterval   = 100 * time.Millisecond
)

// only the holder's token may delete the lock
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var _ secondary.SuiteLocker = &Locker{}

// Locker implements SuiteLocker with Redis
type Locker struct {
	redisClient *redis.Client
	logger      primary.Logger
	wait        time.Duration
}

// NewLocker creates a Redis suite locker; Lock gives up after wait.
func NewLocker(redisClient *redis.Client, wait time.Duration, logger primary.Logger) *Locker {
	return &Locker{
		redisClient: redisClient,
		logger:      logger,
		wait:        wait,
	}
}

func lockKey(projectID int64, name string) string {
	return fmt.Sprintf("%s%d:%s", lockKeyPrefix, projectID, name)
}

func suiteKey(projectID int64, name string) string {
	return fmt.Sprintf("%s%d:%s", suiteKeyPrefix, projectID, name)
}

func (l *Locker) Lock(ctx context.Context, projectID int64, name string) (func(), error) {
	key := lockKey(projectID, name)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.redisClient.SetNX(ctx, key, token, lockExpiration).Result()
		if err != nil {
			l.logger.Error("Failed to acquire suite lock", "key", key, "error", err)
			return nil, fmt.Errorf("failed to acquire suite lock: %w", err)
		}
		if ok {
			l.logger.Debug("Acquired suite lock", "key", key)
			return func() { l.unlock(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for suite lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := unlockScript.Run(ctx, l.redisClient, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Warn("Failed to release suite lock", "key", key, "error", err)
	}
}

func (l *Locker) CachedSuiteID(ctx context.Context, projectID int64, name string) (int64, bool, error) {
	data, err := l.redisClient.Get(ctx, suiteKey(projectID, name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		l.logger.Error("Failed to get cached suite", "name", name, "error", err)
		return 0, false, fmt.Errorf("failed to get cached suite: %w", err)
	}

	var suite domain.Suite
	if err := json.Unmarshal(data, &suite); err != nil {
		l.logger.Warn("Ignoring malformed cached suite", "name", name, "error", err)
		return 0, false, nil
	}
	if suite.ID <= 0 {
		return 0, false, nil
	}
	return suite.ID, true, nil
}

func (l *Locker) StoreSuiteID(ctx context.Context, projectID int64, name string, suiteID int64) error {
	data, err := json.Marshal(domain.Suite{ID: suiteID, Name: name})
	if err != nil {
		return fmt.Errorf("failed to marshal suite: %w", err)
	}

	if err := l.redisClient.Set(ctx, suiteKey(projectID, name), data, suiteCacheTTL).Err(); err != nil {
		l.logger.Error("Failed to cache suite", "name", name, "error", err)
		return fmt.Errorf("failed to cache suite: %w", err)
	}
	return nil
}
