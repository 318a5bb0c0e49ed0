package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID    string             `json:"author_id" bson:"author_id"` // Firebase UID of the author
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"content" bson:"content"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Status      string             `json:"status" bson:"status"`
	ViewCount   int                `json:"view_count" bson:"view_count"`
	PublishedAt time.Time          `json:"published_at,omitempty" bson:"published_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
