package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// SessionStore deletes expired session rows.
type SessionStore interface {
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionPurgeJob removes expired login sessions from postgres.
type SessionPurgeJob struct {
	store  SessionStore
	logger *slog.Logger
}

// NewSessionPurgeJob constructs the job.
func NewSessionPurgeJob(store SessionStore, logger *slog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{store: store, logger: logger}
}

// Handle processes TaskSessionPurge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	cutoff := payload.Cutoff
	if cutoff.IsZero() {
		cutoff = time.Now()
	}
	removed, err := j.store.DeleteExpiredSessions(ctx, cutoff)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged expired sessions",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff),
		)
	}
	return nil
}
