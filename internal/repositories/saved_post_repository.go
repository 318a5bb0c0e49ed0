package repositories

import (
	"fmt"
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(userID uint, postID string) error
	GetSavedPostsByUser(userID uint) ([]models.SavedPost, error)
	GetSavedPostIDs(userID uint) (map[string]bool, error)
	GetRecentSavesByUsers(userIDs []uint, since time.Time) ([]models.SavedPost, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	return r.db.Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) UnsavePost(userID uint, postID string) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved post not found")
	}
	return nil
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(userID uint) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}

// GetSavedPostIDs returns the set of post IDs the user has saved
func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID uint) (map[string]bool, error) {
	var postIDs []string
	err := r.db.Model(&models.SavedPost{}).Where("user_id = ?", userID).Pluck("post_id", &postIDs).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = true
	}
	return result, nil
}

// GetRecentSavesByUsers returns saves made by any of the given users since the
// cutoff. Used to collect friend activity for social signals.
func (r *PostgresSavedPostRepository) GetRecentSavesByUsers(userIDs []uint, since time.Time) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	if len(userIDs) == 0 {
		return saved, nil
	}
	err := r.db.Where("user_id IN ? AND created_at > ?", userIDs, since).Find(&saved).Error
	return saved, err
}
