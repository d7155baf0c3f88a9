// Package db routes relational access across a single write primary and an
// optional pool of read replicas, and holds the repositories built on top of
// that routing.
package db

import (
	"sync/atomic"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Executor is the read/write routing surface. Decorators (see timing.go)
// implement the same interface and compose at construction time.
type Executor interface {
	// ExecuteRead runs op against a selected replica; on any error the same
	// op is retried once against the primary before the error propagates.
	ExecuteRead(op func(tx *gorm.DB) error) error
	// ExecuteWrite always targets the primary.
	ExecuteWrite(op func(tx *gorm.DB) error) error
	// Primary exposes the write handle for callers that need read-your-writes
	// (auth lookups, health checks).
	Primary() *gorm.DB
}

// Router is a stateless routing facade; it never owns data. It provides no
// consistency guarantee beyond the underlying replication lag.
type Router struct {
	primary  *gorm.DB
	replicas []*gorm.DB
	next     atomic.Uint64
}

// NewRouter builds a router over already-open handles. With no replicas the
// pool is just the primary and the router degenerates to direct access.
func NewRouter(primary *gorm.DB, replicas ...*gorm.DB) *Router {
	if len(replicas) == 0 {
		replicas = []*gorm.DB{primary}
	}
	return &Router{primary: primary, replicas: replicas}
}

// Open connects the primary and every configured replica. A replica that
// fails to connect is dropped with a warning rather than aborting startup.
func Open(cfg conf.Database) (*Router, error) {
	primary, err := gorm.Open(postgres.Open(cfg.PrimaryDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect primary database")
	}
	var replicas []*gorm.DB
	for _, dsn := range cfg.ReplicaDSNs {
		replica, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			log.Warnf("replica connection failed, reads will use remaining pool: %v", err)
			continue
		}
		replicas = append(replicas, replica)
	}
	return NewRouter(primary, replicas...), nil
}

func (r *Router) Primary() *gorm.DB {
	return r.primary
}

func (r *Router) replica() *gorm.DB {
	idx := r.next.Add(1)
	return r.replicas[int(idx)%len(r.replicas)]
}

func (r *Router) ExecuteRead(op func(tx *gorm.DB) error) error {
	replica := r.replica()
	err := op(replica)
	if err == nil {
		return nil
	}
	if replica == r.primary {
		return errors.WithStack(err)
	}
	// Single immediate fallback, no circuit breaker.
	log.Warnf("replica read failed, falling back to primary: %v", err)
	return errors.WithStack(op(r.primary))
}

func (r *Router) ExecuteWrite(op func(tx *gorm.DB) error) error {
	return errors.WithStack(op(r.primary))
}

// AutoMigrate creates the schema on the primary.
func (r *Router) AutoMigrate() error {
	return errors.WithStack(r.primary.AutoMigrate(
		&model.User{},
		&model.FragranceFamily{},
		&model.Formula{},
	))
}

func (r *Router) Close() error {
	handles := append([]*gorm.DB{r.primary}, r.replicas...)
	seen := make(map[*gorm.DB]struct{}, len(handles))
	for _, h := range handles {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		sqlDB, err := h.DB()
		if err != nil {
			continue
		}
		if err := sqlDB.Close(); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
