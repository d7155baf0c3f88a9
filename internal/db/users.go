package db

import (
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetUserByID reads from the primary: auth checks must not observe
// replication lag.
func (d *DB) GetUserByID(id uint) (*model.User, error) {
	var user model.User
	if err := d.exec.Primary().First(&user, id).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find user %d", id)
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := first(d.exec.Primary(), &user, "email = ?", email); err != nil {
		return nil, errors.Wrapf(err, "failed to find user by email")
	}
	return &user, nil
}

func (d *DB) CreateUser(user *model.User) error {
	return d.exec.ExecuteWrite(func(tx *gorm.DB) error {
		return errors.WithStack(tx.Create(user).Error)
	})
}
