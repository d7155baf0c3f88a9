package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DB bundles the repositories over a routing Executor.
type DB struct {
	exec Executor
}

func New(exec Executor) *DB {
	return &DB{exec: exec}
}

// Ping verifies the primary connection, for health checks.
func (d *DB) Ping() error {
	sqlDB, err := d.exec.Primary().DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(sqlDB.Ping())
}

func first[T any](tx *gorm.DB, dest *T, query any, args ...any) error {
	return tx.Where(query, args...).First(dest).Error
}
