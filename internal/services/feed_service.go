package services

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/tareq-s/feedcraft/backend/internal/recommendation"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"go.uber.org/zap"
)

// FeedService is the synchronous entry point of the engine. It serves the
// pre-computed feed when one is fresh, computes a bounded realtime ranking on
// cache miss, and degrades to plain popularity when even that fails. Callers
// always get a best-effort list; an empty list is the only visible failure.
type FeedService struct {
	feeds       repositories.PersonalizedFeedRepository
	posts       repositories.PostRepository
	precomputer *FeedPrecomputer
	cfg         *recommendation.Config
	clock       clock.Clock
	log         *zap.SugaredLogger
}

func NewFeedService(
	feeds repositories.PersonalizedFeedRepository,
	posts repositories.PostRepository,
	precomputer *FeedPrecomputer,
	cfg *recommendation.Config,
	clk clock.Clock,
	log *zap.SugaredLogger,
) *FeedService {
	return &FeedService{
		feeds:       feeds,
		posts:       posts,
		precomputer: precomputer,
		cfg:         cfg,
		clock:       clk,
		log:         log.With("component", "feed_service"),
	}
}

// GetRecommendations returns up to count ranked post IDs for the user.
func (s *FeedService) GetRecommendations(ctx context.Context, userID uint, count int) ([]string, error) {
	if count <= 0 {
		count = s.cfg.DefaultRecommendationCount
	}

	feed, err := s.feeds.GetUserFeed(userID)
	if err != nil {
		s.log.Warnw("feed lookup failed, falling back to realtime computation", "user_id", userID, "error", err)
	} else if feed != nil && feed.IsValidAt(s.clock.Now()) {
		return s.backfillTrending(ctx, feed.TopRecommendations(count), count), nil
	}

	// Cache miss or stale feed: compute synchronously with a tighter candidate
	// bound to keep latency acceptable. The result is served without being
	// persisted; the next scheduler tick produces the durable feed.
	ranked, err := s.precomputer.RankForUser(ctx, userID, s.cfg.RealtimeComputationLimit)
	if err != nil {
		s.log.Warnw("realtime computation failed, falling back to popular posts", "user_id", userID, "error", err)
		return s.popularFallback(ctx, count)
	}

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	postIDs := make([]string, len(ranked))
	for i, r := range ranked {
		postIDs[i] = r.PostID
	}
	return s.backfillTrending(ctx, postIDs, count), nil
}

// backfillTrending tops a short list up to count with trending posts the list
// does not already contain. A backfill failure keeps the short list; it never
// fails the request.
func (s *FeedService) backfillTrending(ctx context.Context, postIDs []string, count int) []string {
	if len(postIDs) >= count {
		return postIDs
	}
	trending, err := s.precomputer.Trending(ctx, count-len(postIDs), postIDs)
	if err != nil {
		s.log.Warnw("trending backfill failed, serving short feed", "have", len(postIDs), "want", count, "error", err)
		return postIDs
	}
	for _, t := range trending {
		postIDs = append(postIDs, t.PostID)
	}
	return postIDs
}

// popularFallback is the last resort before an empty list.
func (s *FeedService) popularFallback(ctx context.Context, count int) ([]string, error) {
	posts, err := s.posts.GetPopularPosts(ctx, int64(count))
	if err != nil {
		s.log.Errorw("popular posts fallback failed", "error", err)
		return []string{}, nil
	}
	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID.Hex())
	}
	return postIDs, nil
}
