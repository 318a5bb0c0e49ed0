package recommendation

import (
	"math"
	"sort"
	"time"
)

// Candidate is one post with every signal the scorer needs already attached.
// All signal fetching happens before scoring so the scoring pass itself never
// touches I/O.
type Candidate struct {
	PostID        string
	AuthorID      string
	Tags          []string
	ViewCount     int
	AverageRating float64
	TotalRatings  int
	PublishedAt   time.Time
}

// UserSignals bundles the per-user inputs of the weighted algorithm.
type UserSignals struct {
	// Interests maps tag -> raw (decayed) interest score.
	Interests map[string]float64
	// FriendSaves maps post ID -> number of friends who saved it recently.
	FriendSaves map[string]int
	// FriendHighRatings maps post ID -> number of friends who recently rated
	// it at or above the high-rating threshold.
	FriendHighRatings map[string]int
}

// ScoredPost is one ranked entry of a feed.
type ScoredPost struct {
	PostID      string
	Score       float64
	PublishedAt time.Time
}

// Score computes the composite score of one candidate for one user: a
// weighted sum of six sub-scores, each normalized to [0,1] before weighting.
func Score(c Candidate, signals UserSignals, cfg *Config, now time.Time) float64 {
	score := interestScore(c.Tags, signals.Interests) * cfg.UserInterestWeight
	score += socialScore(c.PostID, signals, cfg) * cfg.SocialSignalWeight
	score += viewCountScore(c.ViewCount, cfg.ViewCountNormalizationFactor) * cfg.ViewCountWeight
	score += (c.AverageRating / cfg.MaxRatingValue) * cfg.AverageRatingWeight
	score += recencyScore(c.PublishedAt, now, cfg.RecencyDecayFactor) * cfg.RecencyWeight
	score += totalRatingsScore(c.TotalRatings, cfg.TotalRatingsNormalizationFactor) * cfg.TotalRatingsWeight
	return score
}

// ScoreAll runs the weighted algorithm over every candidate and returns the
// ranking sorted best-first with a deterministic tie-break.
func ScoreAll(candidates []Candidate, signals UserSignals, cfg *Config, now time.Time) []ScoredPost {
	ranked := make([]ScoredPost, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, ScoredPost{
			PostID:      c.PostID,
			Score:       Score(c, signals, cfg, now),
			PublishedAt: c.PublishedAt,
		})
	}
	sortRanked(ranked)
	return ranked
}

// PopularityRank is the cheap cold-start fallback: no interest or social
// lookups, just view count and average rating.
func PopularityRank(candidates []Candidate, cfg *Config) []ScoredPost {
	ranked := make([]ScoredPost, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, ScoredPost{
			PostID:      c.PostID,
			Score:       float64(c.ViewCount)*cfg.SimplePopularMultiplier + c.AverageRating,
			PublishedAt: c.PublishedAt,
		})
	}
	sortRanked(ranked)
	return ranked
}

// TrendingRank orders candidates by platform-wide momentum: views, rating
// quality, rating volume and freshness. No per-user signals, so it can top up
// any user's feed without extra lookups.
func TrendingRank(candidates []Candidate, cfg *Config, now time.Time) []ScoredPost {
	ranked := make([]ScoredPost, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, ScoredPost{
			PostID:      c.PostID,
			Score:       trendingScore(c, cfg, now),
			PublishedAt: c.PublishedAt,
		})
	}
	sortRanked(ranked)
	return ranked
}

func trendingScore(c Candidate, cfg *Config, now time.Time) float64 {
	score := viewCountScore(c.ViewCount, cfg.ViewCountNormalizationFactor) * cfg.TrendingViewWeight
	score += (c.AverageRating / cfg.MaxRatingValue) * cfg.TrendingRatingWeight
	score += math.Min(float64(c.TotalRatings)/cfg.TrendingEngagementNormalizationFactor, 1.0) * cfg.TrendingEngagementWeight
	score += recencyScore(c.PublishedAt, now, cfg.RecencyDecayFactor) * cfg.TrendingRecencyWeight
	return score
}

// sortRanked orders by score descending; equal scores prefer the more recent
// publish time, then the lower post ID, so identical inputs always produce
// identical feeds.
func sortRanked(ranked []ScoredPost) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].PublishedAt.Equal(ranked[j].PublishedAt) {
			return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
		}
		return ranked[i].PostID < ranked[j].PostID
	})
}

// interestScore sums the user's interest in the post's tags and normalizes by
// the user's strongest interest. No tag overlap scores 0.
func interestScore(tags []string, interests map[string]float64) float64 {
	if len(tags) == 0 || len(interests) == 0 {
		return 0
	}
	maxInterest := 0.0
	for _, s := range interests {
		if s > maxInterest {
			maxInterest = s
		}
	}
	if maxInterest <= 0 {
		return 0
	}
	sum := 0.0
	for _, tag := range tags {
		sum += interests[tag]
	}
	return math.Min(sum/(maxInterest*float64(len(tags))), 1.0)
}

// socialScore adds a fixed weight per friend save and per friend high rating
// of the post, capped at 1 so a large friend list cannot drown out the other
// terms.
func socialScore(postID string, signals UserSignals, cfg *Config) float64 {
	saves := signals.FriendSaves[postID]
	highRatings := signals.FriendHighRatings[postID]
	if saves == 0 && highRatings == 0 {
		return 0
	}
	raw := float64(saves)*cfg.FriendSaveSignalWeight + float64(highRatings)*cfg.FriendRatingSignalWeight
	return math.Min(raw, 1.0)
}

// viewCountScore is a diminishing-returns curve asymptotic to 1.
func viewCountScore(viewCount int, normalization float64) float64 {
	if viewCount <= 0 {
		return 0
	}
	v := float64(viewCount)
	return v / (v + normalization)
}

// recencyScore decays exponentially with age in days; a post published right
// now scores 1.
func recencyScore(publishedAt, now time.Time, decayDays float64) float64 {
	ageDays := now.Sub(publishedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / decayDays)
}

func totalRatingsScore(totalRatings int, normalization float64) float64 {
	return math.Min(float64(totalRatings)/normalization, 1.0)
}
