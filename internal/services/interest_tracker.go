package services

import (
	"fmt"
	"math"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"go.uber.org/zap"
)

// interactionWeights maps an action type to how strongly it signals interest
// in the acted-on post's tags. Saving is the strongest signal, a passing view
// the weakest.
var interactionWeights = map[string]float64{
	"view":    0.1,
	"save":    0.8,
	"rate":    0.6,
	"comment": 0.4,
	"share":   0.5,
}

// InterestTracker owns per-user, per-tag interest scores. Every relevant user
// action adds weight to the post's tags; the scheduler decays all scores
// periodically so stale interests fade out.
type InterestTracker struct {
	interests repositories.UserInterestRepository
	log       *zap.SugaredLogger
}

func NewInterestTracker(interests repositories.UserInterestRepository, log *zap.SugaredLogger) *InterestTracker {
	return &InterestTracker{
		interests: interests,
		log:       log.With("component", "interest_tracker"),
	}
}

// RecordInteraction applies one interaction of the given type to every tag of
// the post. For "rate" interactions the increment scales with the rating, so
// a 5-star rating moves interest far more than a 1-star one. Failures on one
// tag do not block the other tags.
func (t *InterestTracker) RecordInteraction(userID uint, tags []string, interactionType string, rating *float64) error {
	if len(tags) == 0 {
		return nil
	}

	baseWeight, ok := interactionWeights[interactionType]
	if !ok {
		return fmt.Errorf("unknown interaction type %q", interactionType)
	}

	increment := baseWeight
	if interactionType == "rate" && rating != nil {
		// Scale a 1-5 rating into a 0.2-1.0 multiplier.
		increment *= (*rating-1)/4.0*0.8 + 0.2
	}

	increments := make(map[string]float64, len(tags))
	for _, tag := range tags {
		increments[tag] = increment
	}

	if err := t.interests.BatchUpsertInterests(userID, increments); err != nil {
		return fmt.Errorf("record %s interaction for user %d: %w", interactionType, userID, err)
	}
	t.log.Debugw("recorded interaction", "user_id", userID, "type", interactionType, "tags", tags)
	return nil
}

// TopInterests returns the user's strongest interests as a tag -> score map.
func (t *InterestTracker) TopInterests(userID uint, topCount int) (map[string]float64, error) {
	rows, err := t.interests.TopInterests(userID, topCount)
	if err != nil {
		return nil, err
	}
	interests := make(map[string]float64, len(rows))
	for _, row := range rows {
		interests[row.Tag] = row.Score
	}
	return interests, nil
}

// UserSimilarity computes the cosine similarity of two users' interest
// vectors. Users with no overlapping tags score 0.
func (t *InterestTracker) UserSimilarity(userID, otherID uint) (float64, error) {
	a, err := t.interests.GetInterestsByUser(userID)
	if err != nil {
		return 0, err
	}
	b, err := t.interests.GetInterestsByUser(otherID)
	if err != nil {
		return 0, err
	}
	return cosineSimilarity(toScoreMap(a), toScoreMap(b)), nil
}

// Decay multiplies every stored score by decayFactor.
func (t *InterestTracker) Decay(decayFactor float64) error {
	if err := t.interests.DecayAllScores(decayFactor); err != nil {
		return fmt.Errorf("decay interests: %w", err)
	}
	t.log.Infow("applied interest decay", "factor", decayFactor)
	return nil
}

// CleanupLowScores removes interests that decayed below the threshold.
func (t *InterestTracker) CleanupLowScores(minimumScore float64) error {
	deleted, err := t.interests.CleanupLowScores(minimumScore)
	if err != nil {
		return fmt.Errorf("cleanup low-score interests: %w", err)
	}
	t.log.Infow("cleaned up low-score interests", "deleted", deleted, "minimum", minimumScore)
	return nil
}

func toScoreMap(rows []models.UserInterest) map[string]float64 {
	m := make(map[string]float64, len(rows))
	for _, row := range rows {
		m[row.Tag] = row.Score
	}
	return m
}

func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dot := 0.0
	for tag, score := range a {
		if other, ok := b[tag]; ok {
			dot += score * other
		}
	}
	if dot == 0 {
		return 0
	}
	magA, magB := 0.0, 0.0
	for _, s := range a {
		magA += s * s
	}
	for _, s := range b {
		magB += s * s
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
