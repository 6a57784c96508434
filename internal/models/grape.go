package models

import "gorm.io/gorm"

// Grape represents a grape variety (e.g., "Nebbiolo", "Riesling", "Syrah").
type Grape struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
