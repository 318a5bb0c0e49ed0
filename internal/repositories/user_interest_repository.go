package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserInterestRepository is the persistence contract behind the interest
// tracker: per-(user, tag) score rows with increment, decay and cleanup.
type UserInterestRepository interface {
	UpsertInterest(userID uint, tag string, scoreIncrement float64) error
	BatchUpsertInterests(userID uint, increments map[string]float64) error
	TopInterests(userID uint, topCount int) ([]models.UserInterest, error)
	GetInterestsByUser(userID uint) ([]models.UserInterest, error)
	DecayAllScores(decayFactor float64) error
	CleanupLowScores(minimumScore float64) (int64, error)
}

// PostgresUserInterestRepository implements UserInterestRepository
type PostgresUserInterestRepository struct {
	db *gorm.DB
}

func NewPostgresUserInterestRepository(db *gorm.DB) *PostgresUserInterestRepository {
	return &PostgresUserInterestRepository{db: db}
}

// UpsertInterest adds scoreIncrement to the (user, tag) row, creating it on
// first interaction. The interaction count always advances by one and the
// row's last_updated moves to now. Safe to retry: the conflict target is the
// composite unique index.
func (r *PostgresUserInterestRepository) UpsertInterest(userID uint, tag string, scoreIncrement float64) error {
	now := time.Now()
	row := models.UserInterest{
		UserID:           userID,
		Tag:              tag,
		Score:            scoreIncrement,
		InteractionCount: 1,
		LastUpdated:      now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "tag"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":             gorm.Expr("user_interests.score + ?", scoreIncrement),
			"interaction_count": gorm.Expr("user_interests.interaction_count + 1"),
			"last_updated":      now,
		}),
	}).Create(&row).Error
}

// BatchUpsertInterests applies every tag increment for one user. A failure on
// one tag does not block the others; all failures are joined into the
// returned error.
func (r *PostgresUserInterestRepository) BatchUpsertInterests(userID uint, increments map[string]float64) error {
	var errs []error
	for tag, increment := range increments {
		if err := r.UpsertInterest(userID, tag, increment); err != nil {
			errs = append(errs, fmt.Errorf("tag %q: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

// TopInterests returns the user's topCount strongest interests, ties broken
// by most recent update.
func (r *PostgresUserInterestRepository) TopInterests(userID uint, topCount int) ([]models.UserInterest, error) {
	var interests []models.UserInterest
	err := r.db.Where("user_id = ?", userID).
		Order("score DESC").
		Order("last_updated DESC").
		Limit(topCount).
		Find(&interests).Error
	return interests, err
}

// GetInterestsByUser returns all interest rows for a user, strongest first
func (r *PostgresUserInterestRepository) GetInterestsByUser(userID uint) ([]models.UserInterest, error) {
	var interests []models.UserInterest
	err := r.db.Where("user_id = ?", userID).Order("score DESC").Find(&interests).Error
	return interests, err
}

// DecayAllScores multiplies every stored score by decayFactor in one sweep.
func (r *PostgresUserInterestRepository) DecayAllScores(decayFactor float64) error {
	return r.db.Exec("UPDATE user_interests SET score = score * ?", decayFactor).Error
}

// CleanupLowScores deletes rows whose score fell below minimumScore and
// returns how many were removed.
func (r *PostgresUserInterestRepository) CleanupLowScores(minimumScore float64) (int64, error) {
	res := r.db.Where("score < ?", minimumScore).Delete(&models.UserInterest{})
	return res.RowsAffected, res.Error
}
