package repositories

import (
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRatingRepository defines the interface for rating signal reads/writes
type PostRatingRepository interface {
	RatePost(userID uint, postID string, rating float64) error
	GetRatedPostIDs(userID uint) (map[string]bool, error)
	GetRecentHighRatingsByUsers(userIDs []uint, threshold float64, since time.Time) ([]models.PostRating, error)
	GetRatingAggregates(postIDs []string) (map[string]models.RatingAggregate, error)
}

// PostgresPostRatingRepository implements PostRatingRepository
type PostgresPostRatingRepository struct {
	db *gorm.DB
}

func NewPostgresPostRatingRepository(db *gorm.DB) *PostgresPostRatingRepository {
	return &PostgresPostRatingRepository{db: db}
}

// RatePost records a rating, replacing any previous rating by the same user
// for the same post.
func (r *PostgresPostRatingRepository) RatePost(userID uint, postID string, rating float64) error {
	now := time.Now()
	row := models.PostRating{UserID: userID, PostID: postID, Rating: rating, UpdatedAt: now}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"rating": rating, "updated_at": now}),
	}).Create(&row).Error
}

// GetRatedPostIDs returns the set of post IDs the user has rated
func (r *PostgresPostRatingRepository) GetRatedPostIDs(userID uint) (map[string]bool, error) {
	var postIDs []string
	err := r.db.Model(&models.PostRating{}).Where("user_id = ?", userID).Pluck("post_id", &postIDs).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = true
	}
	return result, nil
}

// GetRecentHighRatingsByUsers returns ratings at or above threshold made by
// any of the given users since the cutoff.
func (r *PostgresPostRatingRepository) GetRecentHighRatingsByUsers(userIDs []uint, threshold float64, since time.Time) ([]models.PostRating, error) {
	var ratings []models.PostRating
	if len(userIDs) == 0 {
		return ratings, nil
	}
	err := r.db.Where("user_id IN ? AND rating >= ? AND updated_at > ?", userIDs, threshold, since).Find(&ratings).Error
	return ratings, err
}

// GetRatingAggregates returns average and total rating counts for the given
// posts in one query. Posts with no ratings are absent from the result.
func (r *PostgresPostRatingRepository) GetRatingAggregates(postIDs []string) (map[string]models.RatingAggregate, error) {
	result := make(map[string]models.RatingAggregate)
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PostID  string
		Average float64
		Total   int
	}
	err := r.db.Model(&models.PostRating{}).
		Select("post_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.PostID] = models.RatingAggregate{Average: row.Average, Total: row.Total}
	}
	return result, nil
}
