package services

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/tareq-s/feedcraft/backend/internal/recommendation"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"go.uber.org/zap"
)

// FeedPrecomputer computes one user's ranked feed from scratch: it gathers
// every signal up front (candidates, interests, friend activity, rating
// aggregates), scores in memory, and persists the truncated ranking.
type FeedPrecomputer struct {
	posts       repositories.PostRepository
	users       repositories.UserRepository
	friendships repositories.FriendshipRepository
	savedPosts  repositories.SavedPostRepository
	ratings     repositories.PostRatingRepository
	tracker     *InterestTracker
	feeds       repositories.PersonalizedFeedRepository
	cfg         *recommendation.Config
	clock       clock.Clock
	log         *zap.SugaredLogger
}

func NewFeedPrecomputer(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	friendships repositories.FriendshipRepository,
	savedPosts repositories.SavedPostRepository,
	ratings repositories.PostRatingRepository,
	tracker *InterestTracker,
	feeds repositories.PersonalizedFeedRepository,
	cfg *recommendation.Config,
	clk clock.Clock,
	log *zap.SugaredLogger,
) *FeedPrecomputer {
	return &FeedPrecomputer{
		posts:       posts,
		users:       users,
		friendships: friendships,
		savedPosts:  savedPosts,
		ratings:     ratings,
		tracker:     tracker,
		feeds:       feeds,
		cfg:         cfg,
		clock:       clk,
		log:         log.With("component", "feed_precomputer"),
	}
}

// ComputeFeedForUser runs the full offline path for one user and upserts the
// result. Callers treat an error here as affecting this user only.
func (p *FeedPrecomputer) ComputeFeedForUser(ctx context.Context, userID uint) error {
	ranked, err := p.RankForUser(ctx, userID, p.cfg.MaxPostsToFetch)
	if err != nil {
		return fmt.Errorf("compute feed for user %d: %w", userID, err)
	}

	if len(ranked) > p.cfg.PreComputationRecommendationCount {
		ranked = ranked[:p.cfg.PreComputationRecommendationCount]
	}

	postIDs := make([]string, len(ranked))
	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		postIDs[i] = r.PostID
		scores[i] = r.Score
	}

	if _, err := p.feeds.UpsertUserFeed(userID, postIDs, scores, p.cfg.FeedVersion); err != nil {
		return fmt.Errorf("persist feed for user %d: %w", userID, err)
	}
	p.log.Debugw("pre-computed feed", "user_id", userID, "posts", len(postIDs))
	return nil
}

// RankForUser scores up to fetchLimit candidates for the user and returns the
// full ranking, best first. The realtime path calls this with a smaller
// fetchLimit than the offline path.
func (p *FeedPrecomputer) RankForUser(ctx context.Context, userID uint, fetchLimit int) ([]recommendation.ScoredPost, error) {
	now := p.clock.Now()

	totalPublished, err := p.posts.CountPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("count published posts: %w", err)
	}

	candidates, err := p.collectCandidates(ctx, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []recommendation.ScoredPost{}, nil
	}

	// Sparse data is not an error: below the minimum pool size the weighted
	// algorithm has nothing meaningful to rank with, so fall back to cheap
	// popularity ordering.
	if totalPublished < int64(p.cfg.MinimumPostsForAlgorithm) || len(candidates) < p.cfg.MinimumPostsForAlgorithm {
		p.log.Debugw("candidate pool below algorithm minimum, using popularity fallback",
			"user_id", userID, "published", totalPublished, "candidates", len(candidates), "minimum", p.cfg.MinimumPostsForAlgorithm)
		p.attachRatingAggregates(candidates)
		return recommendation.PopularityRank(candidates, p.cfg), nil
	}

	signals, err := p.collectSignals(userID, now)
	if err != nil {
		return nil, err
	}
	p.attachRatingAggregates(candidates)

	return recommendation.ScoreAll(candidates, signals, p.cfg, now), nil
}

// Trending ranks recent posts by platform-wide momentum, skipping the given
// post IDs. Used to top up feeds that come back shorter than requested. The
// fetch is oversized because exclusions thin the pool.
func (p *FeedPrecomputer) Trending(ctx context.Context, count int, excludeIDs []string) ([]recommendation.ScoredPost, error) {
	if count <= 0 {
		return []recommendation.ScoredPost{}, nil
	}

	posts, err := p.posts.GetPublishedPosts(ctx, 0, int64(count*3))
	if err != nil {
		return nil, fmt.Errorf("fetch trending candidates: %w", err)
	}

	exclude := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}

	candidates := make([]recommendation.Candidate, 0, len(posts))
	for _, post := range posts {
		id := post.ID.Hex()
		if exclude[id] {
			continue
		}
		candidates = append(candidates, recommendation.Candidate{
			PostID:      id,
			AuthorID:    post.AuthorID,
			Tags:        post.Tags,
			ViewCount:   post.ViewCount,
			PublishedAt: post.PublishedAt,
		})
	}
	p.attachRatingAggregates(candidates)

	ranked := recommendation.TrendingRank(candidates, p.cfg, p.clock.Now())
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}

// collectCandidates pages through published posts in batches to bound peak
// memory, dropping posts the user wrote, saved or already rated.
func (p *FeedPrecomputer) collectCandidates(ctx context.Context, userID uint, fetchLimit int) ([]recommendation.Candidate, error) {
	savedIDs, err := p.savedPosts.GetSavedPostIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch saved posts: %w", err)
	}
	ratedIDs, err := p.ratings.GetRatedPostIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch rated posts: %w", err)
	}

	ownUID := ""
	if user, err := p.users.GetUserByID(userID); err == nil {
		ownUID = user.FirebaseUID
	}

	candidates := make([]recommendation.Candidate, 0, fetchLimit)
	batchSize := int64(p.cfg.BatchProcessingSize)
	for skip := int64(0); skip < int64(fetchLimit); skip += batchSize {
		limit := batchSize
		if remaining := int64(fetchLimit) - skip; remaining < limit {
			limit = remaining
		}
		batch, err := p.posts.GetPublishedPosts(ctx, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch candidate batch at offset %d: %w", skip, err)
		}
		for _, post := range batch {
			id := post.ID.Hex()
			if savedIDs[id] || ratedIDs[id] {
				continue
			}
			if ownUID != "" && post.AuthorID == ownUID {
				continue
			}
			candidates = append(candidates, recommendation.Candidate{
				PostID:      id,
				AuthorID:    post.AuthorID,
				Tags:        post.Tags,
				ViewCount:   post.ViewCount,
				PublishedAt: post.PublishedAt,
			})
		}
		if int64(len(batch)) < limit {
			break // no more posts
		}
	}
	return candidates, nil
}

// collectSignals fetches the user's interests and recent friend activity.
// Missing signals degrade to zero sub-scores rather than failing the run.
func (p *FeedPrecomputer) collectSignals(userID uint, now time.Time) (recommendation.UserSignals, error) {
	signals := recommendation.UserSignals{
		FriendSaves:       map[string]int{},
		FriendHighRatings: map[string]int{},
	}

	interests, err := p.tracker.TopInterests(userID, p.cfg.TopInterestCount)
	if err != nil {
		return signals, fmt.Errorf("fetch interests: %w", err)
	}
	signals.Interests = interests

	friendIDs, err := p.friendships.GetFriendIDs(userID, p.cfg.MaxFriendsToProcess)
	if err != nil {
		// Social signals are an enhancement, not a requirement.
		p.log.Warnw("failed to fetch friends, skipping social signals", "user_id", userID, "error", err)
		return signals, nil
	}
	if len(friendIDs) == 0 {
		return signals, nil
	}

	since := now.AddDate(0, 0, -p.cfg.RecentActivityDays)

	saves, err := p.savedPosts.GetRecentSavesByUsers(friendIDs, since)
	if err != nil {
		p.log.Warnw("failed to fetch friend saves", "user_id", userID, "error", err)
	} else {
		for _, save := range saves {
			signals.FriendSaves[save.PostID]++
		}
	}

	highRatings, err := p.ratings.GetRecentHighRatingsByUsers(friendIDs, p.cfg.HighRatingThreshold, since)
	if err != nil {
		p.log.Warnw("failed to fetch friend ratings", "user_id", userID, "error", err)
	} else {
		for _, rating := range highRatings {
			signals.FriendHighRatings[rating.PostID]++
		}
	}

	return signals, nil
}

// attachRatingAggregates bulk-loads average/total ratings for all candidates
// so scoring itself stays free of I/O.
func (p *FeedPrecomputer) attachRatingAggregates(candidates []recommendation.Candidate) {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.PostID
	}
	aggregates, err := p.ratings.GetRatingAggregates(ids)
	if err != nil {
		p.log.Warnw("failed to fetch rating aggregates, scoring without them", "error", err)
		return
	}
	for i := range candidates {
		if agg, ok := aggregates[candidates[i].PostID]; ok {
			candidates[i].AverageRating = agg.Average
			candidates[i].TotalRatings = agg.Total
		}
	}
}
