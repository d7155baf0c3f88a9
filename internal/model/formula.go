package model

import "time"

// Formula is a persisted fragrance composition owned by a user. Rows are only
// ever created by the queue consumer, never updated or deleted.
type Formula struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            uint             `gorm:"column:user_id;index:idx_formula_user" json:"userId"`
	FragranceFamilyID uint             `gorm:"column:fragrance_family_id" json:"fragranceFamilyId"`
	FragranceFamily   *FragranceFamily `gorm:"foreignKey:FragranceFamilyID" json:"fragranceFamily,omitempty"`
	Name              string           `gorm:"column:name;size:255" json:"name"`
	Description       string           `gorm:"column:description;size:1024" json:"description"`
	TopNote           string           `gorm:"column:top_note;size:255" json:"topNote"`
	MiddleNote        string           `gorm:"column:middle_note;size:255" json:"middleNote"`
	BaseNote          string           `gorm:"column:base_note;size:255" json:"baseNote"`
	Mixing            string           `gorm:"column:mixing;type:text" json:"mixing"`
	CreatedAt         time.Time        `gorm:"autoCreateTime;index:idx_formula_created" json:"createdAt"`
}
