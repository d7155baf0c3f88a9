package db

import (
	"testing"

	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// A second pooled connection would get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	return gdb
}

func migrated(t *testing.T, gdb *gorm.DB) *gorm.DB {
	t.Helper()
	require.NoError(t, NewRouter(gdb).AutoMigrate())
	return gdb
}

func TestExecuteWriteTargetsPrimary(t *testing.T) {
	primary := migrated(t, openSQLite(t))
	replica := migrated(t, openSQLite(t))
	router := NewRouter(primary, replica)

	require.NoError(t, router.ExecuteWrite(func(tx *gorm.DB) error {
		return tx.Create(&model.User{Email: "a@b.c", Password: "x"}).Error
	}))

	var primaryCount, replicaCount int64
	require.NoError(t, primary.Model(&model.User{}).Count(&primaryCount).Error)
	require.NoError(t, replica.Model(&model.User{}).Count(&replicaCount).Error)
	assert.EqualValues(t, 1, primaryCount)
	assert.EqualValues(t, 0, replicaCount)
}

func TestExecuteReadRoundRobin(t *testing.T) {
	primary := migrated(t, openSQLite(t))
	replicaA := migrated(t, openSQLite(t))
	replicaB := migrated(t, openSQLite(t))
	router := NewRouter(primary, replicaA, replicaB)

	var seen []*gorm.DB
	for i := 0; i < 4; i++ {
		require.NoError(t, router.ExecuteRead(func(tx *gorm.DB) error {
			seen = append(seen, tx)
			return nil
		}))
	}
	assert.NotSame(t, seen[0], seen[1])
	assert.Same(t, seen[0], seen[2])
	assert.Same(t, seen[1], seen[3])
}

func TestExecuteReadFallsBackToPrimary(t *testing.T) {
	primary := migrated(t, openSQLite(t))
	require.NoError(t, primary.Create(&model.User{Email: "a@b.c", Password: "x"}).Error)
	// Replica has no schema, so every read against it errors.
	replica := openSQLite(t)
	router := NewRouter(primary, replica)

	var user model.User
	err := router.ExecuteRead(func(tx *gorm.DB) error {
		return tx.First(&user, "email = ?", "a@b.c").Error
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestExecuteReadBothFailPropagates(t *testing.T) {
	// Neither side has a schema; the replica error falls back to the
	// primary, whose error then propagates.
	router := NewRouter(openSQLite(t), openSQLite(t))
	err := router.ExecuteRead(func(tx *gorm.DB) error {
		var user model.User
		return tx.First(&user, "email = ?", "a@b.c").Error
	})
	require.Error(t, err)
}

func TestExecuteReadNoReplicasUsesPrimary(t *testing.T) {
	primary := migrated(t, openSQLite(t))
	router := NewRouter(primary)
	require.NoError(t, router.ExecuteRead(func(tx *gorm.DB) error {
		assert.Same(t, primary, tx)
		return nil
	}))
}

func TestExecuteReadPrimaryReplicaNoDoubleRun(t *testing.T) {
	// When the selected "replica" is the primary itself, a failing op must
	// not be retried against the same handle.
	router := NewRouter(openSQLite(t))
	runs := 0
	err := router.ExecuteRead(func(tx *gorm.DB) error {
		runs++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, runs)
}
