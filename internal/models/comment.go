package models

import "gorm.io/gorm"

// DeletedCommentBody is what a soft-deleted comment's body reads as in output.
// Some historical rows carry it literally in the column instead of a deleted_at
// timestamp; both forms are treated as deleted.
const DeletedCommentBody = "[deleted]"

// Comment is a comment on an entry. A comment with a non-nil ParentCommentID is a
// reply; only one level of nesting exists, a reply never carries replies of its own.
//
// Soft-deleted comments keep their row so reply threading stays intact, and are
// redacted on read.
type Comment struct {
	gorm.Model
	EntryID         uint   `gorm:"not null;index"`
	UserID          uint   `gorm:"not null;index"`
	ParentCommentID *uint  `gorm:"index"`
	Body            string `gorm:"type:text;not null"`

	User User `gorm:"foreignKey:UserID"`
}
