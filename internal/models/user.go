package models

import "gorm.io/gorm"

// User represents a user in the system.
type User struct {
	gorm.Model
	DisplayName  string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	// AvatarPath is a bucket object key, not a URL. It is signed on read.
	AvatarPath string `gorm:"size:512"`
}
