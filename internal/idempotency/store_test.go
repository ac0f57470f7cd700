package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(now *time.Time) *Store {
	s := NewStore(48 * time.Hour)
	s.nowFunc = func() time.Time { return *now }
	return s
}

func TestCreateIfNotExists_Get_MarkDone_MarkFailed(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	ctx := context.Background()
	key := "test-key-1"

	created, err := s.CreateIfNotExists(ctx, key, "sub-123")
	require.NoError(t, err)
	require.True(t, created)

	// second create should return created=false (exists)
	created, err = s.CreateIfNotExists(ctx, key, "sub-999")
	require.NoError(t, err)
	require.False(t, created)

	rec, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, StatusInProgress, rec.Status)
	require.Equal(t, "sub-123", rec.SubmissionID)
	require.Equal(t, now.Add(48*time.Hour), rec.ExpiresAt)

	now = now.Add(time.Minute)
	require.NoError(t, s.MarkDone(ctx, key, "", []byte(`{"ok":true}`), 201))
	rec, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, StatusDone, rec.Status)
	require.Equal(t, "sub-123", rec.SubmissionID)
	require.JSONEq(t, `{"ok":true}`, string(rec.ResponseBody))
	require.Equal(t, 201, rec.ResponseStatus)
	require.Equal(t, now, rec.UpdatedAt)

	require.NoError(t, s.MarkFailed(ctx, key, "failed-reason"))
	rec, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, rec.Status)
	require.Equal(t, "failed-reason", rec.Note)
}

func TestGet_ReturnsCopy(t *testing.T) {
	now := time.Now()
	s := newTestStore(&now)
	ctx := context.Background()

	_, err := s.CreateIfNotExists(ctx, "k", "sub")
	require.NoError(t, err)
	require.NoError(t, s.MarkDone(ctx, "k", "sub", []byte("abc"), 201))

	rec, err := s.Get(ctx, "k")
	require.NoError(t, err)
	rec.Status = StatusFailed
	rec.ResponseBody[0] = 'z'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, StatusDone, again.Status)
	require.Equal(t, "abc", string(again.ResponseBody))
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	s := newTestStore(&now)
	ctx := context.Background()

	_, err := s.CreateIfNotExists(ctx, "old", "sub-1")
	require.NoError(t, err)
	_, err = s.CreateIfNotExists(ctx, "older", "sub-0")
	require.NoError(t, err)

	now = now.Add(48 * time.Hour)
	rec, err := s.Get(ctx, "old")
	require.NoError(t, err)
	require.Nil(t, rec)
	require.ErrorIs(t, s.MarkDone(ctx, "old", "", nil, 201), ErrNotFound)

	created, err := s.CreateIfNotExists(ctx, "old", "sub-2")
	require.NoError(t, err)
	require.True(t, created)

	require.Equal(t, 1, s.Sweep())
}

func TestMissingKeyAndCancelledContext(t *testing.T) {
	s := NewStore(time.Hour)

	require.ErrorIs(t, s.MarkFailed(context.Background(), "nope", "x"), ErrNotFound)

	_, err := s.CreateIfNotExists(context.Background(), "", "sub")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CreateIfNotExists(ctx, "k", "sub")
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.CreateIfNotExists(context.Background(), "k", "sub")
	require.NoError(t, err)
	s.Delete("k")
	rec, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Nil(t, rec)
}
