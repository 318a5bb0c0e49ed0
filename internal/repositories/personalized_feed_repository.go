package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedStatistics is the observability summary of the feed table.
type FeedStatistics struct {
	Total   int64 `json:"total"`
	Valid   int64 `json:"valid"`
	Expired int64 `json:"expired"`
}

// PersonalizedFeedRepository is the feed store: one pre-computed ranking per
// user with expiry-driven freshness.
type PersonalizedFeedRepository interface {
	GetUserFeed(userID uint) (*models.PersonalizedFeed, error)
	UpsertUserFeed(userID uint, postIDs []string, scores []float64, algorithmVersion string) (*models.PersonalizedFeed, error)
	GetExpiredFeeds() ([]models.PersonalizedFeed, error)
	GetExpiringFeeds(within time.Duration) ([]models.PersonalizedFeed, error)
	GetUsersWithoutFeeds() ([]uint, error)
	DeleteExpiredFeeds(olderThanDays int) (int64, error)
	GetFeedStatistics() (FeedStatistics, error)
}

// PostgresPersonalizedFeedRepository implements PersonalizedFeedRepository
type PostgresPersonalizedFeedRepository struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewPostgresPersonalizedFeedRepository(db *gorm.DB, ttl time.Duration) *PostgresPersonalizedFeedRepository {
	return &PostgresPersonalizedFeedRepository{db: db, ttl: ttl}
}

// GetUserFeed returns the user's feed row, or nil when the user has none.
// Expiry does not remove the row; callers check validity themselves.
func (r *PostgresPersonalizedFeedRepository) GetUserFeed(userID uint) (*models.PersonalizedFeed, error) {
	var feed models.PersonalizedFeed
	err := r.db.Where("user_id = ?", userID).First(&feed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// UpsertUserFeed atomically creates or replaces the single feed row for the
// user. Computed and expiry timestamps are set here so retries with the same
// inputs converge on the same stored state.
func (r *PostgresPersonalizedFeedRepository) UpsertUserFeed(userID uint, postIDs []string, scores []float64, algorithmVersion string) (*models.PersonalizedFeed, error) {
	if len(postIDs) != len(scores) {
		return nil, fmt.Errorf("post ID list (%d) and score list (%d) must be the same length", len(postIDs), len(scores))
	}

	now := time.Now()
	feed := models.PersonalizedFeed{
		UserID:           userID,
		PostIDs:          models.StringList(postIDs),
		Scores:           models.FloatList(scores),
		AlgorithmVersion: algorithmVersion,
		ComputedAt:       now,
		ExpiresAt:        now.Add(r.ttl),
		UpdatedAt:        now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"post_ids", "scores", "algorithm_version", "computed_at", "expires_at", "updated_at",
		}),
	}).Create(&feed).Error
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetExpiredFeeds returns feeds whose expiry has passed
func (r *PostgresPersonalizedFeedRepository) GetExpiredFeeds() ([]models.PersonalizedFeed, error) {
	var feeds []models.PersonalizedFeed
	err := r.db.Where("expires_at <= ?", time.Now()).Find(&feeds).Error
	return feeds, err
}

// GetExpiringFeeds returns feeds still valid but expiring within the window
func (r *PostgresPersonalizedFeedRepository) GetExpiringFeeds(within time.Duration) ([]models.PersonalizedFeed, error) {
	now := time.Now()
	var feeds []models.PersonalizedFeed
	err := r.db.Where("expires_at > ? AND expires_at <= ?", now, now.Add(within)).Find(&feeds).Error
	return feeds, err
}

// GetUsersWithoutFeeds returns the IDs of known users that have no feed row
func (r *PostgresPersonalizedFeedRepository) GetUsersWithoutFeeds() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("id NOT IN (?)", r.db.Model(&models.PersonalizedFeed{}).Select("user_id")).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteExpiredFeeds removes feeds that expired more than olderThanDays ago
func (r *PostgresPersonalizedFeedRepository) DeleteExpiredFeeds(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	res := r.db.Where("expires_at < ?", cutoff).Delete(&models.PersonalizedFeed{})
	return res.RowsAffected, res.Error
}

// GetFeedStatistics counts total, valid and expired feeds
func (r *PostgresPersonalizedFeedRepository) GetFeedStatistics() (FeedStatistics, error) {
	var stats FeedStatistics
	now := time.Now()

	if err := r.db.Model(&models.PersonalizedFeed{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&models.PersonalizedFeed{}).Where("expires_at > ?", now).Count(&stats.Valid).Error; err != nil {
		return stats, err
	}
	stats.Expired = stats.Total - stats.Valid
	return stats, nil
}
