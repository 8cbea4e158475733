package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Article struct {
	gorm.Model
	Category    string    `gorm:"not null;index"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Content     string    `gorm:"type:text;not null"`
	Date        time.Time `gorm:"index"`
	ReadTime    string    `gorm:"not null"`
	ImageURL    string
	Tags        datatypes.JSONSlice[string]
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}
	return nil
}
