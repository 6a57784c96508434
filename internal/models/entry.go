package models

import "gorm.io/gorm"

// Entry represents one logged tasting.
//
// One logical tasting event may be stored as a root row plus zero or more shared
// copies created for tagged participants; RootEntryID links a copy to its root.
// The feed collapses these back into a single row.
type Entry struct {
	gorm.Model
	OwnerID     uint  `gorm:"not null;index"`
	RootEntryID *uint `gorm:"index"`

	WineName string `gorm:"size:255;not null"`
	Vintage  int
	Region   string `gorm:"size:255"`
	Rating   int
	Notes    string `gorm:"type:text"`

	// EntryPrivacy gates the entry itself. ReactionPrivacy and CommentsPrivacy gate
	// their facets independently and fall back to EntryPrivacy when absent.
	// CommentsScope is the legacy pre-facet setting (viewers|friends), consulted
	// only when CommentsPrivacy is nil.
	EntryPrivacy    string  `gorm:"size:32;not null;default:'public'"`
	ReactionPrivacy *string `gorm:"size:32"`
	CommentsPrivacy *string `gorm:"size:32"`
	CommentsScope   *string `gorm:"size:32"`

	// IsFeedVisible lets an owner keep an entry out of feeds without deleting it.
	// NULL means visible.
	IsFeedVisible *bool

	Owner  User         `gorm:"foreignKey:OwnerID"`
	Photos []EntryPhoto `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE;"`
	Grapes []*Grape     `gorm:"many2many:entry_grapes;"`
}

// EntryPhoto is one photo attached to an entry. Path is a bucket object key;
// URLs are signed at read time.
type EntryPhoto struct {
	ID       uint   `gorm:"primaryKey"`
	EntryID  uint   `gorm:"not null;index"`
	Path     string `gorm:"size:512;not null"`
	Position int    `gorm:"not null;default:0"`
}
