package repositories

import (
	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for social graph reads
type FriendshipRepository interface {
	GetFriendIDs(userID uint, limit int) ([]uint, error)
	AreFriends(userID, otherID uint) (bool, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// GetFriendIDs returns the IDs of users with an accepted friend request to or
// from userID, capped at limit when limit > 0.
func (r *PostgresFriendshipRepository) GetFriendIDs(userID uint, limit int) ([]uint, error) {
	var requests []models.FriendRequest
	q := r.db.Where("(sender_id = ? OR receiver_id = ?) AND status = ?",
		userID, userID, models.FriendRequestAccepted).Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}

	friendIDs := make([]uint, 0, len(requests))
	for _, req := range requests {
		if req.SenderID == userID {
			friendIDs = append(friendIDs, req.ReceiverID)
		} else {
			friendIDs = append(friendIDs, req.SenderID)
		}
	}
	return friendIDs, nil
}

// AreFriends reports whether an accepted friend request exists between the two users
func (r *PostgresFriendshipRepository) AreFriends(userID, otherID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FriendRequest{}).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			userID, otherID, otherID, userID, models.FriendRequestAccepted).
		Count(&count).Error
	return count > 0, err
}
