package models

import "time"

// Reaction is one emoji left by one user on one entry. A user may leave several
// distinct emoji on the same entry, but never the same emoji twice; the composite
// primary key enforces that.
type Reaction struct {
	EntryID   uint   `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Emoji     string `gorm:"primaryKey;size:16"`
	CreatedAt time.Time
}
