package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/salesdesk/salesdesk/testing"
)

type stubSessionStore struct {
	cutoff  time.Time
	removed int64
	err     error
}

func (s *stubSessionStore) DeleteExpiredSessions(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.removed, s.err
}

func TestSessionPurgeUsesPayloadCutoff(t *testing.T) {
	store := &stubSessionStore{removed: 3}
	job := NewSessionPurgeJob(store, nil)

	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	task, err := NewSessionPurgeTask(cutoff)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.True(t, store.cutoff.Equal(cutoff))
}

func TestSessionPurgeDefaultsToNow(t *testing.T) {
	store := &stubSessionStore{}
	job := NewSessionPurgeJob(store, nil)

	task, err := NewSessionPurgeTask(time.Time{})
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, job.Handle(context.Background(), task))
	assert.False(t, store.cutoff.Before(before), "zero cutoff falls back to the current time")
}

func TestSessionPurgePropagatesStoreError(t *testing.T) {
	store := &stubSessionStore{err: assert.AnError}
	job := NewSessionPurgeJob(store, nil)

	task, err := NewSessionPurgeTask(time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, job.Handle(context.Background(), task), assert.AnError)
}
