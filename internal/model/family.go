package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// Ingredients is an ordered list stored as a JSON text column. Order matters:
// the first three entries are the deterministic fallback for top/middle/base
// notes when generation output cannot be parsed.
type Ingredients []string

func (i Ingredients) Value() (driver.Value, error) {
	data, err := json.Marshal(i)
	return string(data), errors.WithStack(err)
}

func (i *Ingredients) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return errors.WithStack(json.Unmarshal(v, i))
	case string:
		return errors.WithStack(json.Unmarshal([]byte(v), i))
	case nil:
		*i = nil
		return nil
	default:
		return errors.Errorf("unsupported ingredients type %T", value)
	}
}

// FragranceFamily is read-only reference data seeded at bootstrap.
type FragranceFamily struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"column:name;size:64;uniqueIndex" json:"name"`
	Description string      `gorm:"column:description;size:1024" json:"description"`
	Ingredients Ingredients `gorm:"column:ingredients;type:text" json:"ingredients"`
}

// Ingredient returns the seed ingredient at idx, or fallback when the list is
// too short.
func (f *FragranceFamily) Ingredient(idx int, fallback string) string {
	if idx >= 0 && idx < len(f.Ingredients) && f.Ingredients[idx] != "" {
		return f.Ingredients[idx]
	}
	return fallback
}
