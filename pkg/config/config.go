package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/tareq-s/feedcraft/backend/internal/recommendation"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	Recommendation          recommendation.Config
}

// Load reads the whole configuration from the environment. The .env file has
// to be applied here, before any variable is read, so file-only deployments
// see the same values as real environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "feedcraft"),
		Recommendation:          loadRecommendation(),
	}
}

// loadRecommendation starts from the engine defaults and applies environment
// overrides knob by knob. Validation happens at startup, not here.
func loadRecommendation() recommendation.Config {
	cfg := recommendation.DefaultConfig()

	cfg.UserInterestWeight = getEnvFloat("RECO_USER_INTEREST_WEIGHT", cfg.UserInterestWeight)
	cfg.SocialSignalWeight = getEnvFloat("RECO_SOCIAL_SIGNAL_WEIGHT", cfg.SocialSignalWeight)
	cfg.ViewCountWeight = getEnvFloat("RECO_VIEW_COUNT_WEIGHT", cfg.ViewCountWeight)
	cfg.AverageRatingWeight = getEnvFloat("RECO_AVERAGE_RATING_WEIGHT", cfg.AverageRatingWeight)
	cfg.RecencyWeight = getEnvFloat("RECO_RECENCY_WEIGHT", cfg.RecencyWeight)
	cfg.TotalRatingsWeight = getEnvFloat("RECO_TOTAL_RATINGS_WEIGHT", cfg.TotalRatingsWeight)

	cfg.MinimumPostsForAlgorithm = getEnvInt("RECO_MINIMUM_POSTS_FOR_ALGORITHM", cfg.MinimumPostsForAlgorithm)
	cfg.MaxPostsToFetch = getEnvInt("RECO_MAX_POSTS_TO_FETCH", cfg.MaxPostsToFetch)
	cfg.DefaultRecommendationCount = getEnvInt("RECO_DEFAULT_COUNT", cfg.DefaultRecommendationCount)
	cfg.PreComputationRecommendationCount = getEnvInt("RECO_PRECOMPUTE_COUNT", cfg.PreComputationRecommendationCount)

	cfg.RealtimeComputationLimit = getEnvInt("RECO_REALTIME_LIMIT", cfg.RealtimeComputationLimit)
	cfg.BatchProcessingSize = getEnvInt("RECO_BATCH_SIZE", cfg.BatchProcessingSize)
	cfg.MaxConcurrentComputations = getEnvInt("RECO_MAX_CONCURRENT", cfg.MaxConcurrentComputations)

	cfg.MaxFriendsToProcess = getEnvInt("RECO_MAX_FRIENDS", cfg.MaxFriendsToProcess)
	cfg.RecentActivityDays = getEnvInt("RECO_RECENT_ACTIVITY_DAYS", cfg.RecentActivityDays)
	cfg.HighRatingThreshold = getEnvFloat("RECO_HIGH_RATING_THRESHOLD", cfg.HighRatingThreshold)
	cfg.FriendSaveSignalWeight = getEnvFloat("RECO_FRIEND_SAVE_WEIGHT", cfg.FriendSaveSignalWeight)
	cfg.FriendRatingSignalWeight = getEnvFloat("RECO_FRIEND_RATING_WEIGHT", cfg.FriendRatingSignalWeight)

	cfg.MaxRatingValue = getEnvFloat("RECO_MAX_RATING_VALUE", cfg.MaxRatingValue)
	cfg.TotalRatingsNormalizationFactor = getEnvFloat("RECO_TOTAL_RATINGS_NORM", cfg.TotalRatingsNormalizationFactor)
	cfg.ViewCountNormalizationFactor = getEnvFloat("RECO_VIEW_COUNT_NORM", cfg.ViewCountNormalizationFactor)
	cfg.RecencyDecayFactor = getEnvFloat("RECO_RECENCY_DECAY_FACTOR", cfg.RecencyDecayFactor)
	cfg.SimplePopularMultiplier = getEnvFloat("RECO_SIMPLE_POPULAR_MULTIPLIER", cfg.SimplePopularMultiplier)

	cfg.TrendingViewWeight = getEnvFloat("RECO_TRENDING_VIEW_WEIGHT", cfg.TrendingViewWeight)
	cfg.TrendingRatingWeight = getEnvFloat("RECO_TRENDING_RATING_WEIGHT", cfg.TrendingRatingWeight)
	cfg.TrendingEngagementWeight = getEnvFloat("RECO_TRENDING_ENGAGEMENT_WEIGHT", cfg.TrendingEngagementWeight)
	cfg.TrendingRecencyWeight = getEnvFloat("RECO_TRENDING_RECENCY_WEIGHT", cfg.TrendingRecencyWeight)
	cfg.TrendingEngagementNormalizationFactor = getEnvFloat("RECO_TRENDING_ENGAGEMENT_NORM", cfg.TrendingEngagementNormalizationFactor)

	cfg.InterestDecayFactor = getEnvFloat("RECO_INTEREST_DECAY_FACTOR", cfg.InterestDecayFactor)
	cfg.MinimumInterestScore = getEnvFloat("RECO_MINIMUM_INTEREST_SCORE", cfg.MinimumInterestScore)
	cfg.TopInterestCount = getEnvInt("RECO_TOP_INTEREST_COUNT", cfg.TopInterestCount)

	cfg.FeedVersion = getEnv("RECO_FEED_VERSION", cfg.FeedVersion)
	cfg.FeedTTL = getEnvDuration("RECO_FEED_TTL", cfg.FeedTTL)
	cfg.ExpiryRefreshWindow = getEnvDuration("RECO_EXPIRY_REFRESH_WINDOW", cfg.ExpiryRefreshWindow)
	cfg.RefreshInterval = getEnvDuration("RECO_REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.MaintenanceInterval = getEnvDuration("RECO_MAINTENANCE_INTERVAL", cfg.MaintenanceInterval)
	cfg.FeedRetentionDays = getEnvInt("RECO_FEED_RETENTION_DAYS", cfg.FeedRetentionDays)

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
