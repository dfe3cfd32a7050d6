package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge is the task type for deleting expired session rows.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload describes a session purge request.
type SessionPurgePayload struct {
	Cutoff time.Time `json:"cutoff"`
}

// NewSessionPurgeTask constructs an Asynq task purging sessions expired
// before the cutoff.
func NewSessionPurgeTask(cutoff time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(SessionPurgePayload{Cutoff: cutoff})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data, asynq.Queue(QueueDefault)), nil
}
