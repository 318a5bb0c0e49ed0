package repositories

import (
	"fmt"
	"testing"

	"github.com/tareq-s/feedcraft/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database with the production
// schema. The DSN is keyed on the test name so parallel tests never share
// state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.SavedPost{},
		&models.PostRating{},
		&models.UserInterest{},
		&models.PersonalizedFeed{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		Name:        name,
		Email:       fmt.Sprintf("%s@example.com", name),
		FirebaseUID: fmt.Sprintf("firebase-%s", name),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &user
}
