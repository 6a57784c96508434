package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationFriendRequest   NotificationType = "friend_request"
	NotificationRequestAccepted NotificationType = "request_accepted"
	NotificationComment         NotificationType = "comment"
	NotificationReaction        NotificationType = "reaction"
)

// Notification is a stored in-app notification, also pushed live over SSE.
type Notification struct {
	gorm.Model
	UserID  uint             `gorm:"not null;index"`
	ActorID uint             `gorm:"not null"`
	Type    NotificationType `gorm:"size:50;not null"`
	EntryID *uint
	Body    string `gorm:"not null"`
	ReadAt  *time.Time

	Actor User `gorm:"foreignKey:ActorID"`
}
