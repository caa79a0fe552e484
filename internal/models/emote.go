package models

import "time"

// Emotion is the kind of reaction left on a review
type Emotion int

const (
	EmotionPositive Emotion = 1
	EmotionNegative Emotion = 2
)

// Emote represents a user's reaction to a review. A user holds at most one emote per review.
type Emote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  string    `json:"review_id" gorm:"size:24;not null;index;uniqueIndex:idx_review_user_emote"` // Review ObjectID as hex
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_emote"`
	Emotion   Emotion   `json:"emotion" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// EmoteRequest defines the request body for reacting to a review
type EmoteRequest struct {
	Emotion Emotion `json:"emotion" form:"emotion" validate:"required,oneof=1 2"`
}
