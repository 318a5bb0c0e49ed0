package models

import "time"

// PostRating is a single user's star rating (1-5) of a post. One rating per
// (user, post) pair; re-rating overwrites the previous value.
type PostRating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_rating"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_rating"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingAggregate summarizes all ratings of one post.
type RatingAggregate struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
}
