package db

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Timed decorates an Executor and logs how long each routed operation took.
// Composed at construction time; handlers and the worker only ever see the
// Executor interface.
type Timed struct {
	inner Executor
	slow  time.Duration
}

func NewTimed(inner Executor, slowThreshold time.Duration) *Timed {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &Timed{inner: inner, slow: slowThreshold}
}

func (t *Timed) measure(kind string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	entry := log.WithFields(log.Fields{"op": kind, "elapsed": elapsed})
	switch {
	case err != nil:
		entry.Warnf("database operation failed: %v", err)
	case elapsed >= t.slow:
		entry.Warn("slow database operation")
	default:
		entry.Debug("database operation")
	}
	return err
}

func (t *Timed) ExecuteRead(op func(tx *gorm.DB) error) error {
	return t.measure("read", func() error { return t.inner.ExecuteRead(op) })
}

func (t *Timed) ExecuteWrite(op func(tx *gorm.DB) error) error {
	return t.measure("write", func() error { return t.inner.ExecuteWrite(op) })
}

func (t *Timed) Primary() *gorm.DB {
	return t.inner.Primary()
}
