package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReviewHandler handles HTTP requests related to reviews and their emotes
type ReviewHandler struct {
	postRepository   repositories.PostRepository
	reviewRepository repositories.ReviewRepository
	emoteRepository  repositories.EmoteRepository
	userRepository   repositories.UserRepository
	log              *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(postRepo repositories.PostRepository, reviewRepo repositories.ReviewRepository, emoteRepo repositories.EmoteRepository, userRepo repositories.UserRepository, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		postRepository:   postRepo,
		reviewRepository: reviewRepo,
		emoteRepository:  emoteRepo,
		userRepository:   userRepo,
		log:              log,
	}
}

// RegisterReviewRoutes registers review-related routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts/:id/reviews", h.CreateReview, auth)
	g.DELETE("/reviews/:id", h.DeleteReview, auth)
	g.POST("/reviews/:id/emotes", h.ToggleEmote, auth)
}

// EmoteResponse reports the viewer's emotion after a toggle, 0 when removed
type EmoteResponse struct {
	Emotion       models.Emotion `json:"emotion"`
	LikesCount    int64          `json:"likes_count"`
	DislikesCount int64          `json:"dislikes_count"`
}

// CreateReview adds a review to a post
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	verr, err := validate(c, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if verr.HasErrors() {
		return c.JSON(http.StatusBadRequest, FormErrorResponse{Errors: verr.Fields, Input: req})
	}

	// Verify post exists
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return repositoryError(h.log, err, "Post")
	}

	review := &models.Review{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
		Rating:  req.Rating,
	}
	if err := h.reviewRepository.CreateReview(ctx, review); err != nil {
		return repositoryError(h.log, err, "Review")
	}

	authors, err := h.userRepository.GetUsersByIDs(ctx, []uint{userID})
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	view := BuildReviewViews([]models.Review{*review}, nil, authors, userID)[0]
	return c.JSON(http.StatusCreated, view)
}

// DeleteReview removes the author's own review and the emotes left on it
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	reviewID := c.Param("id")

	review, err := h.reviewRepository.GetReviewByID(ctx, reviewID)
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}
	if review.UserID != userID {
		return repositoryError(h.log, repositories.ErrForbidden, "Review")
	}

	if err := h.reviewRepository.DeleteReview(ctx, reviewID); err != nil {
		return repositoryError(h.log, err, "Review")
	}
	if err := h.emoteRepository.DeleteEmotesByReviewIDs(context.WithoutCancel(ctx), []string{review.ID.Hex()}); err != nil {
		h.log.Warn("failed to delete emotes", zap.String("review_id", reviewID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Review deleted successfully"})
}

// ToggleEmote sets, switches or clears the user's emotion on a review
func (h *ReviewHandler) ToggleEmote(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)

	var req models.EmoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	verr, err := validate(c, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if verr.HasErrors() {
		return c.JSON(http.StatusBadRequest, FormErrorResponse{Errors: verr.Fields, Input: req})
	}

	review, err := h.reviewRepository.GetReviewByID(ctx, c.Param("id"))
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}

	reviewID := review.ID.Hex()
	emotion, err := h.emoteRepository.ToggleEmote(ctx, reviewID, userID, req.Emotion)
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}
	likes, dislikes, err := h.emoteRepository.CountEmotes(ctx, reviewID)
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}

	return c.JSON(http.StatusOK, EmoteResponse{Emotion: emotion, LikesCount: likes, DislikesCount: dislikes})
}
