package models

import "gorm.io/gorm"

// Friend request statuses
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest represents a friend request between two users. An accepted
// request is what makes two users friends, there is no separate friendship row.
type FriendRequest struct {
	gorm.Model
	SenderID   uint   `json:"sender_id" gorm:"index"`   // User ID of the sender
	ReceiverID uint   `json:"receiver_id" gorm:"index"` // User ID of the receiver
	Status     string `json:"status" gorm:"type:varchar(20);default:'pending'"`
}
