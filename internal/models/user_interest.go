package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserInterest tracks one user's affinity for one topic tag. The score grows
// with every interaction and is multiplied down by the periodic decay sweep,
// so recent behavior always outweighs old behavior.
type UserInterest struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_tag"`
	Tag              string    `json:"tag" gorm:"size:100;uniqueIndex:idx_user_tag"`
	Score            float64   `json:"score"`
	InteractionCount int       `json:"interaction_count"`
	LastUpdated      time.Time `json:"last_updated" gorm:"index"`
	CreatedAt        time.Time `json:"created_at"`
}

func (i *UserInterest) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RecordInteractionRequest defines the request body for tracking a post interaction
type RecordInteractionRequest struct {
	PostID string   `json:"post_id" validate:"required"`
	Type   string   `json:"type" validate:"required,oneof=view save rate comment share"`
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
