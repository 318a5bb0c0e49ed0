package recommendation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// weightSumTolerance is the allowed floating point slack when checking that
// the six algorithm weights sum to 1.0.
const weightSumTolerance = 0.001

// Config carries every tunable parameter of the recommendation engine. It is
// built once at startup, validated, and never mutated afterwards.
type Config struct {
	// Algorithm weight distribution (must sum to 1.0)
	UserInterestWeight  float64 `validate:"gte=0,lte=1"`
	SocialSignalWeight  float64 `validate:"gte=0,lte=1"`
	ViewCountWeight     float64 `validate:"gte=0,lte=1"`
	AverageRatingWeight float64 `validate:"gte=0,lte=1"`
	RecencyWeight       float64 `validate:"gte=0,lte=1"`
	TotalRatingsWeight  float64 `validate:"gte=0,lte=1"`

	// Algorithm behavior
	MinimumPostsForAlgorithm          int `validate:"gt=0"`
	MaxPostsToFetch                   int `validate:"gt=0"`
	DefaultRecommendationCount        int `validate:"gt=0"`
	PreComputationRecommendationCount int `validate:"gt=0"`

	// Performance bounds
	RealtimeComputationLimit  int `validate:"gt=0"`
	BatchProcessingSize       int `validate:"gt=0"`
	MaxConcurrentComputations int `validate:"gt=0"`

	// Social signals
	MaxFriendsToProcess      int     `validate:"gt=0"`
	RecentActivityDays       int     `validate:"gt=0"`
	HighRatingThreshold      float64 `validate:"gt=0"`
	FriendSaveSignalWeight   float64 `validate:"gte=0"`
	FriendRatingSignalWeight float64 `validate:"gte=0"`

	// Score normalization
	MaxRatingValue                  float64 `validate:"gt=0"`
	TotalRatingsNormalizationFactor float64 `validate:"gt=0"`
	ViewCountNormalizationFactor    float64 `validate:"gt=0"`
	RecencyDecayFactor              float64 `validate:"gt=0"`

	// Simple popularity fallback
	SimplePopularMultiplier float64 `validate:"gt=0"`

	// Trending backfill
	TrendingViewWeight                    float64 `validate:"gte=0,lte=1"`
	TrendingRatingWeight                  float64 `validate:"gte=0,lte=1"`
	TrendingEngagementWeight              float64 `validate:"gte=0,lte=1"`
	TrendingRecencyWeight                 float64 `validate:"gte=0,lte=1"`
	TrendingEngagementNormalizationFactor float64 `validate:"gt=0"`

	// Interest tracking
	InterestDecayFactor  float64 `validate:"gt=0,lte=1"`
	MinimumInterestScore float64 `validate:"gte=0"`
	TopInterestCount     int     `validate:"gt=0"`

	// Feed pre-computation
	FeedVersion         string        `validate:"required"`
	FeedTTL             time.Duration `validate:"gt=0"`
	ExpiryRefreshWindow time.Duration `validate:"gt=0"`
	RefreshInterval     time.Duration `validate:"gt=0"`
	MaintenanceInterval time.Duration `validate:"gt=0"`
	FeedRetentionDays   int           `validate:"gt=0"`
}

// DefaultConfig returns the tuned production defaults. The normalization
// constants are knobs, not load-bearing truths; change them via environment
// overrides rather than here.
func DefaultConfig() Config {
	return Config{
		UserInterestWeight:  0.25,
		SocialSignalWeight:  0.20,
		ViewCountWeight:     0.15,
		AverageRatingWeight: 0.20,
		RecencyWeight:       0.12,
		TotalRatingsWeight:  0.08,

		MinimumPostsForAlgorithm:          5,
		MaxPostsToFetch:                   1000,
		DefaultRecommendationCount:        20,
		PreComputationRecommendationCount: 50,

		RealtimeComputationLimit:  500,
		BatchProcessingSize:       100,
		MaxConcurrentComputations: 8,

		MaxFriendsToProcess:      10,
		RecentActivityDays:       7,
		HighRatingThreshold:      4.0,
		FriendSaveSignalWeight:   0.3,
		FriendRatingSignalWeight: 0.2,

		MaxRatingValue:                  5.0,
		TotalRatingsNormalizationFactor: 50.0,
		ViewCountNormalizationFactor:    1000.0,
		RecencyDecayFactor:              14.0,

		SimplePopularMultiplier: 2.0,

		TrendingViewWeight:                    0.3,
		TrendingRatingWeight:                  0.3,
		TrendingEngagementWeight:              0.2,
		TrendingRecencyWeight:                 0.2,
		TrendingEngagementNormalizationFactor: 20.0,

		InterestDecayFactor:  0.95,
		MinimumInterestScore: 0.01,
		TopInterestCount:     20,

		FeedVersion:         "2.0",
		FeedTTL:             30 * time.Minute,
		ExpiryRefreshWindow: 5 * time.Minute,
		RefreshInterval:     20 * time.Minute,
		MaintenanceInterval: 24 * time.Hour,
		FeedRetentionDays:   7,
	}
}

// WeightSum returns the sum of the six algorithm weights.
func (c *Config) WeightSum() float64 {
	return c.UserInterestWeight + c.SocialSignalWeight + c.ViewCountWeight +
		c.AverageRatingWeight + c.RecencyWeight + c.TotalRatingsWeight
}

// Validate checks field ranges and the weight-sum invariant. A config that
// fails validation must abort startup; the engine never renormalizes weights
// silently.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("recommendation config: %w", err)
	}
	if sum := c.WeightSum(); math.Abs(sum-1.0) >= weightSumTolerance {
		return fmt.Errorf("recommendation config: algorithm weights sum to %.4f, want 1.0 (±%.3f)", sum, weightSumTolerance)
	}
	return nil
}
