package scheduler

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/tareq-s/feedcraft/backend/internal/recommendation"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"github.com/tareq-s/feedcraft/backend/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scheduler drives the background work of the engine on two timers: feed
// refresh every RefreshInterval and maintenance (interest decay, low-score
// cleanup, feed retention) every MaintenanceInterval. Each user's feed is an
// independent unit of work; one user failing never stops the others, and a
// failed computation simply leaves the previous feed in place until the next
// tick retries it.
type Scheduler struct {
	feeds       repositories.PersonalizedFeedRepository
	precomputer *services.FeedPrecomputer
	tracker     *services.InterestTracker
	cfg         *recommendation.Config
	clock       clock.Clock
	log         *zap.SugaredLogger
}

func New(
	feeds repositories.PersonalizedFeedRepository,
	precomputer *services.FeedPrecomputer,
	tracker *services.InterestTracker,
	cfg *recommendation.Config,
	clk clock.Clock,
	log *zap.SugaredLogger,
) *Scheduler {
	return &Scheduler{
		feeds:       feeds,
		precomputer: precomputer,
		tracker:     tracker,
		cfg:         cfg,
		clock:       clk,
		log:         log.With("component", "scheduler"),
	}
}

// Run blocks until ctx is cancelled. The first refresh happens immediately so
// a fresh deployment does not wait a full interval to build feeds.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Infow("scheduler started",
		"refresh_interval", s.cfg.RefreshInterval,
		"maintenance_interval", s.cfg.MaintenanceInterval)

	refresh := s.clock.Ticker(s.cfg.RefreshInterval)
	defer refresh.Stop()
	maintenance := s.clock.Ticker(s.cfg.MaintenanceInterval)
	defer maintenance.Stop()

	s.RefreshFeeds(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-refresh.C:
			s.RefreshFeeds(ctx)
		case <-maintenance.C:
			s.RunMaintenance()
		}
	}
}

// RefreshFeeds recomputes every feed that is expired, expiring soon or
// missing, with per-user isolation and a bounded worker pool.
func (s *Scheduler) RefreshFeeds(ctx context.Context) {
	start := s.clock.Now()

	userIDs := s.usersNeedingRefresh()
	if len(userIDs) == 0 {
		return
	}
	s.log.Infow("starting feed refresh cycle", "users", len(userIDs))

	var succeeded, failed int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentComputations)
	results := make([]bool, len(userIDs))
	for i, userID := range userIDs {
		g.Go(func() error {
			if err := s.precomputer.ComputeFeedForUser(gctx, userID); err != nil {
				// Recovered locally: log, skip, retry on the next tick.
				s.log.Warnw("feed computation failed", "user_id", userID, "error", err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for _, ok := range results {
		if ok {
			succeeded++
		} else {
			failed++
		}
	}

	s.log.Infow("feed refresh cycle completed",
		"duration", s.clock.Now().Sub(start),
		"succeeded", succeeded,
		"failed", failed)
	s.logFeedStatistics()
}

// RunMaintenance decays interests, sweeps out low scores and applies feed
// retention.
func (s *Scheduler) RunMaintenance() {
	if err := s.tracker.Decay(s.cfg.InterestDecayFactor); err != nil {
		s.log.Warnw("interest decay failed", "error", err)
	} else if err := s.tracker.CleanupLowScores(s.cfg.MinimumInterestScore); err != nil {
		// Cleanup runs only after a successful decay so the two sweeps never
		// interleave on the same rows.
		s.log.Warnw("interest cleanup failed", "error", err)
	}

	deleted, err := s.feeds.DeleteExpiredFeeds(s.cfg.FeedRetentionDays)
	if err != nil {
		s.log.Warnw("feed retention cleanup failed", "error", err)
	} else if deleted > 0 {
		s.log.Infow("deleted old expired feeds", "count", deleted, "older_than_days", s.cfg.FeedRetentionDays)
	}
}

// usersNeedingRefresh is the union of users with expired feeds, feeds
// expiring inside the refresh window, and no feed at all.
func (s *Scheduler) usersNeedingRefresh() []uint {
	seen := map[uint]bool{}
	var userIDs []uint
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}

	expired, err := s.feeds.GetExpiredFeeds()
	if err != nil {
		s.log.Warnw("failed to query expired feeds", "error", err)
	}
	for _, feed := range expired {
		add(feed.UserID)
	}

	expiring, err := s.feeds.GetExpiringFeeds(s.cfg.ExpiryRefreshWindow)
	if err != nil {
		s.log.Warnw("failed to query expiring feeds", "error", err)
	}
	for _, feed := range expiring {
		add(feed.UserID)
	}

	missing, err := s.feeds.GetUsersWithoutFeeds()
	if err != nil {
		s.log.Warnw("failed to query users without feeds", "error", err)
	}
	for _, id := range missing {
		add(id)
	}

	return userIDs
}

func (s *Scheduler) logFeedStatistics() {
	stats, err := s.feeds.GetFeedStatistics()
	if err != nil {
		s.log.Warnw("failed to collect feed statistics", "error", err)
		return
	}
	s.log.Infow("feed statistics", "total", stats.Total, "valid", stats.Valid, "expired", stats.Expired)
}
