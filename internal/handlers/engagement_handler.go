package handlers

import (
	"net/http"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/anonto42/placenote/backend/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EngagementHandler toggles the like and visit sets of posts
type EngagementHandler struct {
	postRepository       repositories.PostRepository
	engagementRepository repositories.EngagementRepository
	log                  *zap.Logger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(postRepo repositories.PostRepository, engagementRepo repositories.EngagementRepository, log *zap.Logger) *EngagementHandler {
	return &EngagementHandler{
		postRepository:       postRepo,
		engagementRepository: engagementRepo,
		log:                  log,
	}
}

// RegisterEngagementRoutes registers like and visit routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/posts/:id/like", h.Like, auth)
	g.POST("/posts/:id/visit", h.Visit, auth)
}

type LikeResponse struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

type VisitResponse struct {
	IsVisited   bool  `json:"is_visited"`
	VisitsCount int64 `json:"visits_count"`
}

// Like adds the user to the post's like set, or removes them if already there
func (h *EngagementHandler) Like(c echo.Context) error {
	state, err := h.toggle(c, models.EngagementLike)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LikeResponse{IsLiked: state.Active, LikesCount: state.Count})
}

// Visit marks or unmarks the post as visited by the user
func (h *EngagementHandler) Visit(c echo.Context) error {
	state, err := h.toggle(c, models.EngagementVisit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, VisitResponse{IsVisited: state.Active, VisitsCount: state.Count})
}

func (h *EngagementHandler) toggle(c echo.Context, kind models.EngagementKind) (models.EngagementState, error) {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return models.EngagementState{}, err
	}

	// Verify post exists
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return models.EngagementState{}, repositoryError(h.log, err, "Post")
	}

	state, err := h.engagementRepository.Toggle(ctx, postID, userID, kind)
	if err != nil {
		return models.EngagementState{}, repositoryError(h.log, err, "Post")
	}
	metrics.EngagementToggles.WithLabelValues(string(kind), metrics.ToggleState(state.Active)).Inc()
	return state, nil
}
