package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// oid builds a deterministic ObjectID for tests.
func oid(n byte) primitive.ObjectID {
	var id primitive.ObjectID
	id[11] = n
	return id
}

type fakePostRepo struct {
	posts      []models.Post
	countErr   error
	fetchErr   error
	popularErr error
}

func (f *fakePostRepo) published() []models.Post {
	out := make([]models.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublished {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	for i := range f.posts {
		if f.posts[i].ID.Hex() == id {
			return &f.posts[i], nil
		}
	}
	return nil, fmt.Errorf("post %s not found", id)
}

func (f *fakePostRepo) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	var out []models.Post
	for _, id := range ids {
		if p, err := f.GetPostByID(ctx, id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) GetPublishedPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	published := f.published()
	if skip >= int64(len(published)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(published)) {
		end = int64(len(published))
	}
	return published[skip:end], nil
}

func (f *fakePostRepo) GetPopularPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	if f.popularErr != nil {
		return nil, f.popularErr
	}
	published := f.published()
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].ViewCount > published[j].ViewCount
	})
	if int64(len(published)) > limit {
		published = published[:limit]
	}
	return published, nil
}

func (f *fakePostRepo) CountPublished(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.published())), nil
}

func (f *fakePostRepo) IncrementViewCount(ctx context.Context, postID string) error {
	for i := range f.posts {
		if f.posts[i].ID.Hex() == postID {
			f.posts[i].ViewCount++
			return nil
		}
	}
	return fmt.Errorf("post %s not found", postID)
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range f.users {
		if u.FirebaseUID == firebaseUID {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) GetAllUserIDs() ([]uint, error) {
	ids := make([]uint, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeFriendshipRepo struct {
	friends map[uint][]uint
	err     error
}

func (f *fakeFriendshipRepo) GetFriendIDs(userID uint, limit int) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := f.friends[userID]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeFriendshipRepo) AreFriends(userID, otherID uint) (bool, error) {
	for _, id := range f.friends[userID] {
		if id == otherID {
			return true, nil
		}
	}
	return false, nil
}

type fakeSavedPostRepo struct {
	saves     []models.SavedPost
	savedErr  error
	recentErr error
}

func (f *fakeSavedPostRepo) SavePost(savedPost *models.SavedPost) error {
	f.saves = append(f.saves, *savedPost)
	return nil
}

func (f *fakeSavedPostRepo) UnsavePost(userID uint, postID string) error {
	out := f.saves[:0]
	for _, s := range f.saves {
		if s.UserID != userID || s.PostID != postID {
			out = append(out, s)
		}
	}
	f.saves = out
	return nil
}

func (f *fakeSavedPostRepo) GetSavedPostsByUser(userID uint) ([]models.SavedPost, error) {
	var out []models.SavedPost
	for _, s := range f.saves {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSavedPostRepo) GetSavedPostIDs(userID uint) (map[string]bool, error) {
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	ids := map[string]bool{}
	for _, s := range f.saves {
		if s.UserID == userID {
			ids[s.PostID] = true
		}
	}
	return ids, nil
}

func (f *fakeSavedPostRepo) GetRecentSavesByUsers(userIDs []uint, since time.Time) ([]models.SavedPost, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	members := map[uint]bool{}
	for _, id := range userIDs {
		members[id] = true
	}
	var out []models.SavedPost
	for _, s := range f.saves {
		if members[s.UserID] && !s.CreatedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	ratings    []models.PostRating
	aggregates map[string]models.RatingAggregate
	ratedErr   error
	recentErr  error
	aggErr     error
}

func (f *fakeRatingRepo) RatePost(userID uint, postID string, rating float64) error {
	f.ratings = append(f.ratings, models.PostRating{UserID: userID, PostID: postID, Rating: rating})
	return nil
}

func (f *fakeRatingRepo) GetRatedPostIDs(userID uint) (map[string]bool, error) {
	if f.ratedErr != nil {
		return nil, f.ratedErr
	}
	ids := map[string]bool{}
	for _, r := range f.ratings {
		if r.UserID == userID {
			ids[r.PostID] = true
		}
	}
	return ids, nil
}

func (f *fakeRatingRepo) GetRecentHighRatingsByUsers(userIDs []uint, threshold float64, since time.Time) ([]models.PostRating, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	members := map[uint]bool{}
	for _, id := range userIDs {
		members[id] = true
	}
	var out []models.PostRating
	for _, r := range f.ratings {
		if members[r.UserID] && r.Rating >= threshold && !r.UpdatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) GetRatingAggregates(postIDs []string) (map[string]models.RatingAggregate, error) {
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	out := map[string]models.RatingAggregate{}
	for _, id := range postIDs {
		if agg, ok := f.aggregates[id]; ok {
			out[id] = agg
		}
	}
	return out, nil
}

type fakeInterestRepo struct {
	rows     map[uint]map[string]*models.UserInterest
	failTags map[string]error
}

func newFakeInterestRepo() *fakeInterestRepo {
	return &fakeInterestRepo{rows: map[uint]map[string]*models.UserInterest{}}
}

func (f *fakeInterestRepo) UpsertInterest(userID uint, tag string, scoreIncrement float64) error {
	if err := f.failTags[tag]; err != nil {
		return err
	}
	if f.rows[userID] == nil {
		f.rows[userID] = map[string]*models.UserInterest{}
	}
	row, ok := f.rows[userID][tag]
	if !ok {
		row = &models.UserInterest{UserID: userID, Tag: tag}
		f.rows[userID][tag] = row
	}
	row.Score += scoreIncrement
	row.InteractionCount++
	row.LastUpdated = time.Now()
	return nil
}

func (f *fakeInterestRepo) BatchUpsertInterests(userID uint, increments map[string]float64) error {
	var errs []error
	for tag, inc := range increments {
		if err := f.UpsertInterest(userID, tag, inc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fakeInterestRepo) TopInterests(userID uint, topCount int) ([]models.UserInterest, error) {
	var out []models.UserInterest
	for _, row := range f.rows[userID] {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topCount {
		out = out[:topCount]
	}
	return out, nil
}

func (f *fakeInterestRepo) GetInterestsByUser(userID uint) ([]models.UserInterest, error) {
	return f.TopInterests(userID, len(f.rows[userID]))
}

func (f *fakeInterestRepo) DecayAllScores(decayFactor float64) error {
	for _, tags := range f.rows {
		for _, row := range tags {
			row.Score *= decayFactor
		}
	}
	return nil
}

func (f *fakeInterestRepo) CleanupLowScores(minimumScore float64) (int64, error) {
	var removed int64
	for _, tags := range f.rows {
		for tag, row := range tags {
			if row.Score < minimumScore {
				delete(tags, tag)
				removed++
			}
		}
	}
	return removed, nil
}

type fakeFeedRepo struct {
	feeds     map[uint]*models.PersonalizedFeed
	ttl       time.Duration
	upserts   int
	getErr    error
	upsertErr error
}

func newFakeFeedRepo(ttl time.Duration) *fakeFeedRepo {
	return &fakeFeedRepo{feeds: map[uint]*models.PersonalizedFeed{}, ttl: ttl}
}

func (f *fakeFeedRepo) GetUserFeed(userID uint) (*models.PersonalizedFeed, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.feeds[userID], nil
}

func (f *fakeFeedRepo) UpsertUserFeed(userID uint, postIDs []string, scores []float64, algorithmVersion string) (*models.PersonalizedFeed, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if len(postIDs) != len(scores) {
		return nil, errors.New("length mismatch")
	}
	now := time.Now()
	feed := &models.PersonalizedFeed{
		UserID:           userID,
		PostIDs:          models.StringList(postIDs),
		Scores:           models.FloatList(scores),
		AlgorithmVersion: algorithmVersion,
		ComputedAt:       now,
		ExpiresAt:        now.Add(f.ttl),
	}
	f.feeds[userID] = feed
	f.upserts++
	return feed, nil
}

func (f *fakeFeedRepo) GetExpiredFeeds() ([]models.PersonalizedFeed, error) {
	var out []models.PersonalizedFeed
	for _, feed := range f.feeds {
		if !feed.IsValid() {
			out = append(out, *feed)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) GetExpiringFeeds(within time.Duration) ([]models.PersonalizedFeed, error) {
	now := time.Now()
	var out []models.PersonalizedFeed
	for _, feed := range f.feeds {
		if feed.ExpiresAt.After(now) && !feed.ExpiresAt.After(now.Add(within)) {
			out = append(out, *feed)
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) GetUsersWithoutFeeds() ([]uint, error) {
	return nil, nil
}

func (f *fakeFeedRepo) DeleteExpiredFeeds(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var removed int64
	for userID, feed := range f.feeds {
		if feed.ExpiresAt.Before(cutoff) {
			delete(f.feeds, userID)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeFeedRepo) GetFeedStatistics() (repositories.FeedStatistics, error) {
	var stats repositories.FeedStatistics
	for _, feed := range f.feeds {
		stats.Total++
		if feed.IsValid() {
			stats.Valid++
		} else {
			stats.Expired++
		}
	}
	return stats, nil
}
