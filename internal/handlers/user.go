package handlers

import (
	"net/http"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository       repositories.UserRepository
	engagementRepository repositories.EngagementRepository
	log                  *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, engagementRepo repositories.EngagementRepository, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userRepository:       userRepo,
		engagementRepository: engagementRepo,
		log:                  log,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, auth)    // Get own profile
	g.PUT("/profile", h.UpdateProfile, auth) // Update own profile
	g.GET("/users/:id", h.GetUser)           // Public summary of another user
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id", "User")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	return c.JSON(http.StatusOK, user.ToCompact())
}

// GetProfile retrieves the authenticated user's profile with the posts they liked and visited
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	liked, err := h.engagementRepository.GetPostIDsByUser(ctx, userID, models.EngagementLike)
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	visited, err := h.engagementRepository.GetPostIDsByUser(ctx, userID, models.EngagementVisit)
	if err != nil {
		return repositoryError(h.log, err, "User")
	}

	return c.JSON(http.StatusOK, models.Profile{
		User:           user,
		LikedPostIDs:   nonNil(liked),
		VisitedPostIDs: nonNil(visited),
	})
}

// UpdateProfile updates the authenticated user's display name
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateUserRequest
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

	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	user.Name = req.Name
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return repositoryError(h.log, err, "User")
	}

	return c.JSON(http.StatusOK, user)
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
