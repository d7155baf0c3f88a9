package model

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"column:password;size:255" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
