package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned when updating a key that was never created or has expired.
var ErrNotFound = errors.New("idempotency key not found")

// Store keeps idempotency records in memory until their TTL passes.
type Store struct {
	mu        sync.Mutex
	records   map[string]*Record
	ttlWindow time.Duration // TTL applied when creating entries
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow: how long a key is remembered (e.g., 48*time.Hour)
func NewStore(ttlWindow time.Duration) *Store {
	return &Store{
		records:   map[string]*Record{},
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists creates a record with status IN_PROGRESS if the key is not live.
// Returns (true, nil) if created and (false, nil) if the key already exists
// (caller should Get to inspect).
func (s *Store) CreateIfNotExists(ctx context.Context, key, submissionID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key == "" {
		return false, fmt.Errorf("create: empty idempotency key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if _, ok := s.live(key, now); ok {
		return false, nil
	}
	s.records[key] = &Record{
		Key:          key,
		Status:       StatusInProgress,
		SubmissionID: submissionID,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(s.ttlWindow),
	}
	return true, nil
}

// Get returns a copy of the record for key, or (nil, nil) if absent or expired.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(key, s.nowFunc())
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.ResponseBody = append([]byte(nil), rec.ResponseBody...)
	return &cp, nil
}

// MarkDone sets status to DONE and stores the response to replay.
func (s *Store) MarkDone(ctx context.Context, key, submissionID string, responseBody []byte, responseStatus int) error {
	return s.update(ctx, key, func(r *Record) {
		r.Status = StatusDone
		if submissionID != "" {
			r.SubmissionID = submissionID
		}
		r.ResponseBody = append([]byte(nil), responseBody...)
		r.ResponseStatus = responseStatus
	})
}

// MarkFailed marks the record as FAILED with a note so the caller may retry.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.update(ctx, key, func(r *Record) {
		r.Status = StatusFailed
		r.Note = note
	})
}

// Delete forgets key, letting the next request with it start over.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Sweep drops expired records and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	n := 0
	for k, r := range s.records {
		if !now.Before(r.ExpiresAt) {
			delete(s.records, k)
			n++
		}
	}
	return n
}

func (s *Store) update(ctx context.Context, key string, fn func(*Record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	rec, ok := s.live(key, now)
	if !ok {
		return fmt.Errorf("update %q: %w", key, ErrNotFound)
	}
	fn(rec)
	rec.UpdatedAt = now
	return nil
}

// live must be called with mu held.
func (s *Store) live(key string, now time.Time) (*Record, bool) {
	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(s.records, key)
		return nil, false
	}
	return rec, true
}
