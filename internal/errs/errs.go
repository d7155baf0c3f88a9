package errs

import "github.com/pkg/errors"

var (
	// TaskNotFound covers both "never existed" and "expired"; the two are
	// indistinguishable once the status record's TTL has elapsed.
	TaskNotFound = errors.New("task not found")

	// FamilyNotFound means the classified family has no seed row. This is a
	// data error, not a user error, and fails the whole generation task.
	FamilyNotFound = errors.New("fragrance family not found")

	QueueUnavailable = errors.New("queue not connected")
	CacheUnavailable = errors.New("cache not available")
)

func IsTaskNotFound(err error) bool {
	return errors.Is(err, TaskNotFound)
}
