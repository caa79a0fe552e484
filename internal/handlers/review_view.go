package handlers

import "github.com/anonto42/placenote/backend/internal/models"

// ReviewView is a review annotated with the emotes left on it.
// LikeExist and DislikeExist are only set for an authenticated viewer.
type ReviewView struct {
	models.Review
	Author       models.UserCompact `json:"author"`
	Likes        []models.Emote     `json:"likes"`
	Dislikes     []models.Emote     `json:"dislikes"`
	LikeExist    *bool              `json:"like_exist,omitempty"`
	DislikeExist *bool              `json:"dislike_exist,omitempty"`
}

// BuildReviewViews groups emotes under their reviews in a single pass.
// Reviews keep their input order; emotes of unknown reviews are dropped.
// A viewerID of 0 means the viewer is anonymous.
func BuildReviewViews(reviews []models.Review, emotes []models.Emote, authors map[uint]models.User, viewerID uint) []ReviewView {
	views := make([]ReviewView, len(reviews))
	index := make(map[string]int, len(reviews))
	for i, review := range reviews {
		views[i] = ReviewView{
			Review:   review,
			Author:   models.UserCompact{ID: review.UserID},
			Likes:    []models.Emote{},
			Dislikes: []models.Emote{},
		}
		if author, ok := authors[review.UserID]; ok {
			views[i].Author = author.ToCompact()
		}
		if viewerID != 0 {
			liked, disliked := false, false
			views[i].LikeExist = &liked
			views[i].DislikeExist = &disliked
		}
		index[review.ID.Hex()] = i
	}

	for _, emote := range emotes {
		i, ok := index[emote.ReviewID]
		if !ok {
			continue
		}
		view := &views[i]
		mine := viewerID != 0 && emote.UserID == viewerID
		switch emote.Emotion {
		case models.EmotionPositive:
			view.Likes = append(view.Likes, emote)
			if mine {
				*view.LikeExist = true
			}
		case models.EmotionNegative:
			view.Dislikes = append(view.Dislikes, emote)
			if mine {
				*view.DislikeExist = true
			}
		}
	}
	return views
}
