package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store tracks generation progress in the cache under task:{id}. The cache
// owns the records for their TTL window; a record missing after a terminal
// state's TTL is indistinguishable from one that never existed.
type Store struct {
	cache *cache.Client
}

func NewStore(c *cache.Client) *Store {
	return &Store{cache: c}
}

func key(taskID string) string {
	return "task:" + taskID
}

// Set upserts the full record with a fresh TTL. Callers always write the
// complete current view; last write wins.
func (s *Store) Set(ctx context.Context, taskID string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal task record")
	}
	return s.cache.SetEx(ctx, key(taskID), string(data), ttl)
}

// Get returns the current record or errs.TaskNotFound. A cache failure also
// reads as not-found: with the cache down the record is as unreachable as one
// that expired, and pollers must not see the outage as a server error.
func (s *Store) Get(ctx context.Context, taskID string) (*Record, error) {
	val, found, err := s.cache.Get(ctx, key(taskID))
	if err != nil {
		log.Warnf("task status read for %s failed: %v", taskID, err)
		return nil, errs.TaskNotFound
	}
	if !found {
		return nil, errs.TaskNotFound
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, errors.Wrap(err, "unmarshal task record")
	}
	return &rec, nil
}

// SetQueued writes the initial record at enqueue time.
func (s *Store) SetQueued(ctx context.Context, taskID string) error {
	return s.Set(ctx, taskID, Record{
		Status:   StatusQueued,
		Progress: 0,
		Message:  "Request queued for processing...",
	}, PendingTTL)
}

func (s *Store) SetProcessing(ctx context.Context, taskID string, progress int, message string) error {
	return s.Set(ctx, taskID, Record{
		Status:   StatusProcessing,
		Progress: progress,
		Message:  message,
	}, PendingTTL)
}

func (s *Store) SetCompleted(ctx context.Context, taskID string, rec Record) error {
	rec.Status = StatusCompleted
	rec.Progress = 100
	return s.Set(ctx, taskID, rec, TerminalTTL)
}

func (s *Store) SetFailed(ctx context.Context, taskID string, message string) error {
	return s.Set(ctx, taskID, Record{
		Status:   StatusFailed,
		Progress: 0,
		Message:  message,
	}, TerminalTTL)
}
