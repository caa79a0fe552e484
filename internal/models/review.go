package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review represents a user's review of a post stored in MongoDB
type Review struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    uint               `json:"post_id" bson:"post_id"` // ID of the reviewed post (PostgreSQL)
	UserID    uint               `json:"user_id" bson:"user_id"`
	Content   string             `json:"content" bson:"content"`
	Rating    int                `json:"rating" bson:"rating"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreateReviewRequest defines the request body for reviewing a post
type CreateReviewRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=1000"`
	Rating  int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
}
