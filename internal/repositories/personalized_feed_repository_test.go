package repositories

import (
	"testing"
	"time"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/gorm"
)

func backdateFeedExpiry(t *testing.T, db *gorm.DB, userID uint, expiresAt time.Time) {
	t.Helper()
	err := db.Model(&models.PersonalizedFeed{}).
		Where("user_id = ?", userID).
		Update("expires_at", expiresAt).Error
	if err != nil {
		t.Fatalf("backdate expiry for user %d: %v", userID, err)
	}
}

func TestUpsertUserFeedKeepsOneRowPerUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	first, err := repo.UpsertUserFeed(1, []string{"a", "b"}, []float64{0.9, 0.5}, "2.0")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !first.IsValid() {
		t.Fatal("fresh feed should be valid")
	}

	_, err = repo.UpsertUserFeed(1, []string{"c"}, []float64{0.7}, "2.0")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	db.Model(&models.PersonalizedFeed{}).Count(&count)
	if count != 1 {
		t.Fatalf("feed rows = %d, want exactly 1", count)
	}

	stored, err := repo.GetUserFeed(1)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if stored == nil {
		t.Fatal("feed should exist")
	}
	if len(stored.PostIDs) != 1 || stored.PostIDs[0] != "c" {
		t.Fatalf("stored feed should reflect the latest upsert, got %v", stored.PostIDs)
	}
	if len(stored.Scores) != 1 || stored.Scores[0] != 0.7 {
		t.Fatalf("stored scores should reflect the latest upsert, got %v", stored.Scores)
	}
}

func TestUpsertUserFeedRejectsMismatchedLengths(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	_, err := repo.UpsertUserFeed(1, []string{"a", "b"}, []float64{0.9}, "2.0")
	if err == nil {
		t.Fatal("expected error for mismatched post and score lists")
	}
}

func TestGetUserFeedMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	feed, err := repo.GetUserFeed(42)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if feed != nil {
		t.Fatalf("expected nil for a user without a feed, got %+v", feed)
	}
}

func TestExpiredAndExpiringQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	for _, userID := range []uint{1, 2, 3} {
		if _, err := repo.UpsertUserFeed(userID, []string{"p"}, []float64{1.0}, "2.0"); err != nil {
			t.Fatalf("upsert user %d: %v", userID, err)
		}
	}
	now := time.Now()
	backdateFeedExpiry(t, db, 1, now.Add(-time.Minute))  // already expired
	backdateFeedExpiry(t, db, 2, now.Add(2*time.Minute)) // expiring soon
	// user 3 keeps the full TTL

	expired, err := repo.GetExpiredFeeds()
	if err != nil {
		t.Fatalf("expired: %v", err)
	}
	if len(expired) != 1 || expired[0].UserID != 1 {
		t.Fatalf("expired feeds = %+v, want only user 1", expired)
	}

	expiring, err := repo.GetExpiringFeeds(5 * time.Minute)
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(expiring) != 1 || expiring[0].UserID != 2 {
		t.Fatalf("expiring feeds = %+v, want only user 2", expiring)
	}
}

func TestGetUsersWithoutFeeds(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	if _, err := repo.UpsertUserFeed(bob.ID, []string{"p"}, []float64{1.0}, "2.0"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	missing, err := repo.GetUsersWithoutFeeds()
	if err != nil {
		t.Fatalf("users without feeds: %v", err)
	}
	if len(missing) != 2 || missing[0] != alice.ID || missing[1] != carol.ID {
		t.Fatalf("missing = %v, want [%d %d]", missing, alice.ID, carol.ID)
	}
}

func TestDeleteExpiredFeedsHonorsRetention(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	for _, userID := range []uint{1, 2, 3} {
		if _, err := repo.UpsertUserFeed(userID, []string{"p"}, []float64{1.0}, "2.0"); err != nil {
			t.Fatalf("upsert user %d: %v", userID, err)
		}
	}
	now := time.Now()
	backdateFeedExpiry(t, db, 1, now.AddDate(0, 0, -8)) // past retention
	backdateFeedExpiry(t, db, 2, now.Add(-time.Hour))   // expired but recent

	removed, err := repo.DeleteExpiredFeeds(7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d feeds, want 1", removed)
	}

	if feed, _ := repo.GetUserFeed(1); feed != nil {
		t.Fatal("feed past retention should be gone")
	}
	if feed, _ := repo.GetUserFeed(2); feed == nil {
		t.Fatal("recently expired feed should survive retention cleanup")
	}
}

func TestGetFeedStatistics(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresPersonalizedFeedRepository(db, 30*time.Minute)

	for _, userID := range []uint{1, 2, 3} {
		if _, err := repo.UpsertUserFeed(userID, []string{"p"}, []float64{1.0}, "2.0"); err != nil {
			t.Fatalf("upsert user %d: %v", userID, err)
		}
	}
	backdateFeedExpiry(t, db, 3, time.Now().Add(-time.Minute))

	stats, err := repo.GetFeedStatistics()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Valid != 2 || stats.Expired != 1 {
		t.Fatalf("stats = %+v, want total 3, valid 2, expired 1", stats)
	}
}
