package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/apperrors"
)

// runLockKey guards the portfolio analysis pass. Snapshot uniqueness in
// the database is the correctness backstop; the lock just keeps a second
// concurrent run from burning classification budget on races it will lose.
const runLockKey = "friction:analysis:lock"

// runLockTTL bounds how long a crashed run can hold the lock.
const runLockTTL = 30 * time.Minute

// releaseScript deletes the lock only if this run still owns it, so a run
// that outlived its TTL cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a best-effort distributed mutex over the analysis run. With a
// nil Redis client (no Redis configured) it degrades to a no-op, which is
// fine for the single-scheduler deployment.
type RunLock struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRunLock creates a run lock. client may be nil.
func NewRunLock(client *redis.Client, logger *zap.Logger) *RunLock {
	return &RunLock{client: client, logger: logger.Named("runlock")}
}

// Acquire takes the lock and returns a release function. Returns
// apperrors.ErrRunInProgress when another run holds it.
func (l *RunLock) Acquire(ctx context.Context) (func(), error) {
	if l.client == nil {
		return func() {}, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, runLockKey, token, runLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrRunInProgress
	}

	release := func() {
		// Release happens on the way out even when the run's context died.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{runLockKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release run lock", zap.Error(err))
		}
	}
	return release, nil
}
