package db

import (
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CreateFormula writes through the primary and reloads the family
// association so the persisted row can be embedded in the task result.
func (d *DB) CreateFormula(f *model.Formula) error {
	return d.exec.ExecuteWrite(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return errors.Wrapf(err, "failed to create formula for user %d", f.UserID)
		}
		return errors.WithStack(tx.Preload("FragranceFamily").First(f, f.ID).Error)
	})
}

// ListFormulasByUser returns one page of a user's formulas, newest first,
// plus the total row count. The list and count reads are independent and run
// concurrently, each with its own replica fallback.
func (d *DB) ListFormulasByUser(userID uint, page, limit int) ([]model.Formula, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var (
		formulas []model.Formula
		total    int64
	)
	var g errgroup.Group
	g.Go(func() error {
		return d.exec.ExecuteRead(func(tx *gorm.DB) error {
			return tx.Preload("FragranceFamily").
				Where("user_id = ?", userID).
				Order("created_at DESC").
				Offset(offset).
				Limit(limit).
				Find(&formulas).Error
		})
	})
	g.Go(func() error {
		return d.exec.ExecuteRead(func(tx *gorm.DB) error {
			return tx.Model(&model.Formula{}).Where("user_id = ?", userID).Count(&total).Error
		})
	})
	if err := g.Wait(); err != nil {
		return nil, 0, errors.Wrapf(err, "failed to list formulas for user %d", userID)
	}
	if formulas == nil {
		formulas = []model.Formula{}
	}
	return formulas, total, nil
}
