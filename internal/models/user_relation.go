package models

import "time"

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	// Accepted relations are undirected in meaning: either party is a friend of the other.
	StatusAccepted FriendshipStatus = "accepted"

	// StatusDeclined means the recipient turned the request down. The row is kept so the
	// requester cannot immediately re-send.
	StatusDeclined FriendshipStatus = "declined"
)

// UserRelation represents the relationship between two users.
// The primary key is a composite of (FromUserID, ToUserID) to ensure uniqueness.
// The application deletes the inverse edge when a request is accepted, but readers
// must still tolerate duplicate accepted edges between the same pair.
type UserRelation struct {
	FromUserID uint             `gorm:"primaryKey"`
	ToUserID   uint             `gorm:"primaryKey"`
	Status     FriendshipStatus `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Define foreign key relationships
	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
