package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonalizedFeed is the pre-computed ranking for one user: an ordered list
// of post IDs with the scores that produced the order. Exactly one row per
// user; the background scheduler overwrites it via upsert before it expires.
type PersonalizedFeed struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uint       `json:"user_id" gorm:"uniqueIndex"`
	PostIDs          StringList `json:"post_ids" gorm:"type:json"`
	Scores           FloatList  `json:"scores" gorm:"type:json"`
	AlgorithmVersion string     `json:"algorithm_version" gorm:"size:20"`
	ComputedAt       time.Time  `json:"computed_at" gorm:"index"`
	ExpiresAt        time.Time  `json:"expires_at" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (f *PersonalizedFeed) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// IsValidAt reports whether the feed is still fresh at the given instant.
func (f *PersonalizedFeed) IsValidAt(now time.Time) bool {
	return now.Before(f.ExpiresAt)
}

// IsValid reports whether the feed is fresh right now.
func (f *PersonalizedFeed) IsValid() bool {
	return f.IsValidAt(time.Now())
}

// TopRecommendations returns the first count post IDs of the feed.
func (f *PersonalizedFeed) TopRecommendations(count int) []string {
	if count <= 0 {
		return []string{}
	}
	if count > len(f.PostIDs) {
		count = len(f.PostIDs)
	}
	out := make([]string, count)
	copy(out, f.PostIDs[:count])
	return out
}
