package db

import (
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetFamilyByName resolves a seeded family row. Returns errs.FamilyNotFound
// when no row matches, which aborts the generation pipeline upstream.
func (d *DB) GetFamilyByName(name string) (*model.FragranceFamily, error) {
	var family model.FragranceFamily
	err := d.exec.ExecuteRead(func(tx *gorm.DB) error {
		return first(tx, &family, "name = ?", name)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(errs.FamilyNotFound, "fragrance family %s not found in database", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find fragrance family %s", name)
	}
	return &family, nil
}

// EnsureFamily creates the family unless a row with the same name exists.
// Seeding runs on every startup, so this has to be idempotent.
func (d *DB) EnsureFamily(family *model.FragranceFamily) (bool, error) {
	created := false
	err := d.exec.ExecuteWrite(func(tx *gorm.DB) error {
		var existing model.FragranceFamily
		err := first(tx, &existing, "name = ?", family.Name)
		if err == nil {
			*family = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		created = true
		return tx.Create(family).Error
	})
	return created, errors.Wrapf(err, "failed to ensure fragrance family %s", family.Name)
}
