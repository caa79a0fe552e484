package models

import "time"

// EngagementKind names one of the per-post user sets
type EngagementKind string

const (
	EngagementLike  EngagementKind = "like"
	EngagementVisit EngagementKind = "visit"
)

// PostEngagement records that a user belongs to the like or visit set of a post
type PostEngagement struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	PostID    uint           `json:"post_id" gorm:"not null;uniqueIndex:idx_post_user_kind"`
	UserID    uint           `json:"user_id" gorm:"not null;index;uniqueIndex:idx_post_user_kind"`
	Kind      EngagementKind `json:"kind" gorm:"size:10;not null;uniqueIndex:idx_post_user_kind"`
	CreatedAt time.Time      `json:"created_at"`
}

// EngagementState is the outcome of a toggle
type EngagementState struct {
	Active bool
	Count  int64
}
