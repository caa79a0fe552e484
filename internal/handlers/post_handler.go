package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/anonto42/placenote/backend/pkg/geocoder"
	"github.com/anonto42/placenote/backend/pkg/metrics"
	"github.com/anonto42/placenote/backend/pkg/storage"
	"github.com/anonto42/placenote/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const postsPath = "/api/v1/posts"

// PostRepositories groups the stores the post pages read from
type PostRepositories struct {
	Posts       repositories.PostRepository
	Tags        repositories.TagRepository
	Engagements repositories.EngagementRepository
	Reviews     repositories.ReviewRepository
	Emotes      repositories.EmoteRepository
	Users       repositories.UserRepository
}

// PageOptions are the settings injected into form and detail contexts
type PageOptions struct {
	KakaoScriptKey string
	MaxUploadBytes int64
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	repos    PostRepositories
	images   storage.Store
	geocoder geocoder.Geocoder
	log      *zap.Logger
	opts     PageOptions
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(repos PostRepositories, images storage.Store, geo geocoder.Geocoder, log *zap.Logger, opts PageOptions) *PostHandler {
	return &PostHandler{
		repos:    repos,
		images:   images,
		geocoder: geo,
		log:      log,
		opts:     opts,
	}
}

// RegisterPostRoutes registers post-related routes. auth rejects anonymous
// requests, optionalAuth only identifies the viewer when a token is sent.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.Index)
	g.GET("/posts/search", h.Search)
	g.GET("/posts/new", h.CreateForm, auth)
	g.POST("/posts", h.Create, auth)
	g.GET("/posts/:id", h.Detail, optionalAuth)
	g.GET("/posts/:id/edit", h.EditForm, auth)
	g.POST("/posts/:id", h.Update, auth)
	g.PUT("/posts/:id", h.Update, auth)
	g.POST("/posts/:id/delete", h.Delete, auth)
	g.DELETE("/posts/:id", h.Delete, auth)
	g.GET("/tags/:id/posts", h.TaggedPosts)
}

// UpdatePostRequest is the update form: the create fields plus the rows to drop
type UpdatePostRequest struct {
	models.PostForm
	models.DeleteSelection
}

// PostFormContext is what the create and edit forms are rendered from
type PostFormContext struct {
	KakaoScriptKey  string                  `json:"kakao_script_key"`
	FacilityCatalog []models.FacilityOption `json:"facility_catalog"`
	Input           models.PostForm         `json:"input"`
	Post            *models.Post            `json:"post,omitempty"`
	Facilities      []models.Facility       `json:"facilities,omitempty"`
}

// PostDetail is the detail page context. IsLiked and IsVisited are only set
// for an authenticated viewer.
type PostDetail struct {
	KakaoScriptKey string                `json:"kakao_script_key"`
	Post           *models.Post          `json:"post"`
	Owner          models.UserCompact    `json:"owner"`
	Facilities     []models.Facility     `json:"facilities"`
	Coordinates    *geocoder.Coordinates `json:"coordinates"`
	LikesCount     int64                 `json:"likes_count"`
	VisitsCount    int64                 `json:"visits_count"`
	IsLiked        *bool                 `json:"is_liked,omitempty"`
	IsVisited      *bool                 `json:"is_visited,omitempty"`
	Reviews        []ReviewView          `json:"reviews"`
}

// Index lists every post newest first with its representative image
func (h *PostHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	posts, err := h.repos.Posts.GetAllPosts(ctx)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	cards, err := h.cards(ctx, posts)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": cards})
}

// CreateForm returns the empty create form context
func (h *PostHandler) CreateForm(c echo.Context) error {
	return c.JSON(http.StatusOK, h.formContext(models.PostForm{}))
}

// Create validates the form, uploads the images and writes the post in one transaction
func (h *PostHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)

	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	uploads, verr := validators.ValidatePostForm(c.Echo().Validator, &form, uploadedFiles(c, "image"), h.opts.MaxUploadBytes)
	if verr != nil {
		return c.JSON(http.StatusBadRequest, FormErrorResponse{Errors: verr.Fields, Input: form})
	}

	images, err := h.storeImages(ctx, uploads)
	if err != nil {
		h.log.Error("failed to store post images", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store images")
	}

	post := &models.Post{
		UserID:  userID,
		Title:   form.Title,
		Address: form.Address,
	}
	if err := h.repos.Posts.CreatePost(ctx, post, form.TagNames(), images, form.Facilities); err != nil {
		h.discardImages(context.WithoutCancel(ctx), images)
		return repositoryError(h.log, err, "Post")
	}

	h.log.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", userID), zap.Int("images", len(images)))
	return c.JSON(http.StatusCreated, echo.Map{"id": post.ID, "location": postLocation(post.ID)})
}

// Detail aggregates a post with its facilities, location, counters and reviews
func (h *PostHandler) Detail(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	post, err := h.repos.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	facilities, err := h.repos.Posts.GetFacilities(ctx, postID)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}

	detail := PostDetail{
		KakaoScriptKey: h.opts.KakaoScriptKey,
		Post:           post,
		Owner:          models.UserCompact{ID: post.UserID},
		Facilities:     facilities,
		Coordinates:    h.locate(ctx, post),
	}
	if err := h.fillEngagement(ctx, &detail, getUserIDFromContext(c)); err != nil {
		return repositoryError(h.log, err, "Post")
	}

	reviews, err := h.repos.Reviews.GetReviewsByPostID(ctx, postID)
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}
	reviewIDs := make([]string, len(reviews))
	userIDs := []uint{post.UserID}
	for i, review := range reviews {
		reviewIDs[i] = review.ID.Hex()
		userIDs = append(userIDs, review.UserID)
	}
	emotes, err := h.repos.Emotes.GetEmotesByReviewIDs(ctx, reviewIDs)
	if err != nil {
		return repositoryError(h.log, err, "Review")
	}
	users, err := h.repos.Users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return repositoryError(h.log, err, "User")
	}
	if owner, ok := users[post.UserID]; ok {
		detail.Owner = owner.ToCompact()
	}
	detail.Reviews = BuildReviewViews(reviews, emotes, users, getUserIDFromContext(c))

	return c.JSON(http.StatusOK, detail)
}

// EditForm returns the update form prefilled with the current post
func (h *PostHandler) EditForm(c echo.Context) error {
	ctx := c.Request().Context()
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	post, err := h.ownedPost(ctx, postID, getUserIDFromContext(c))
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	facilities, err := h.repos.Posts.GetFacilities(ctx, postID)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}

	tags := make([]string, len(post.Tags))
	for i, tag := range post.Tags {
		tags[i] = tag.Name
	}
	codes := make([]string, len(facilities))
	for i, facility := range facilities {
		codes[i] = facility.Code
	}

	formCtx := h.formContext(models.PostForm{
		Title:      post.Title,
		Address:    post.Address,
		Tags:       strings.Join(tags, ", "),
		Facilities: codes,
	})
	formCtx.Post = post
	formCtx.Facilities = facilities
	return c.JSON(http.StatusOK, formCtx)
}

// Update applies an owner's edit: fields, tag set, removed and added images and facilities
func (h *PostHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	if _, err := h.ownedPost(ctx, postID, userID); err != nil {
		return repositoryError(h.log, err, "Post")
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	uploads, verr := validators.ValidatePostForm(c.Echo().Validator, &req.PostForm, uploadedFiles(c, "image"), h.opts.MaxUploadBytes)
	if verr != nil {
		return c.JSON(http.StatusBadRequest, FormErrorResponse{Errors: verr.Fields, Input: req})
	}

	images, err := h.storeImages(ctx, uploads)
	if err != nil {
		h.log.Error("failed to store post images", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store images")
	}

	removed, err := h.repos.Posts.UpdatePost(ctx, &repositories.PostUpdate{
		PostID:            postID,
		EditorID:          userID,
		Title:             req.Title,
		Address:           req.Address,
		TagNames:          req.TagNames(),
		DeleteImageIDs:    req.ImageIDs,
		DeleteFacilityIDs: req.FacilityIDs,
		NewImages:         images,
		NewFacilities:     req.Facilities,
	})
	if err != nil {
		h.discardImages(context.WithoutCancel(ctx), images)
		return repositoryError(h.log, err, "Post")
	}
	h.discardImages(context.WithoutCancel(ctx), removed)

	return c.JSON(http.StatusOK, echo.Map{"id": postID, "location": postLocation(postID)})
}

// Delete removes an owner's post with everything attached to it
func (h *PostHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID, err := parseID(c, "id", "Post")
	if err != nil {
		return err
	}

	images, err := h.repos.Posts.DeletePost(ctx, postID, userID)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}

	cleanup := context.WithoutCancel(ctx)
	h.discardImages(cleanup, images)
	h.removeReviews(cleanup, postID)

	h.log.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"redirect": postsPath})
}

// Search lists posts whose title or address contains q, ignoring case
func (h *PostHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"query": query, "posts": []models.PostCard{}})
	}

	posts, err := h.repos.Posts.SearchPosts(ctx, query)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	cards, err := h.cards(ctx, posts)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"query": query, "posts": cards})
}

// TaggedPosts lists the posts carrying a tag
func (h *PostHandler) TaggedPosts(c echo.Context) error {
	ctx := c.Request().Context()
	tagID, err := parseID(c, "id", "Tag")
	if err != nil {
		return err
	}

	tag, err := h.repos.Tags.GetTagByID(ctx, tagID)
	if err != nil {
		return repositoryError(h.log, err, "Tag")
	}
	posts, err := h.repos.Tags.GetPostsByTagID(ctx, tagID)
	if err != nil {
		return repositoryError(h.log, err, "Tag")
	}
	cards, err := h.cards(ctx, posts)
	if err != nil {
		return repositoryError(h.log, err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"tag": tag, "posts": cards})
}

func (h *PostHandler) formContext(input models.PostForm) PostFormContext {
	return PostFormContext{
		KakaoScriptKey:  h.opts.KakaoScriptKey,
		FacilityCatalog: models.FacilityCatalog,
		Input:           input,
	}
}

// ownedPost loads a post and checks that userID owns it
func (h *PostHandler) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := h.repos.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, repositories.ErrForbidden
	}
	return post, nil
}

// cards pairs every post with its thumbnail, fetched in one query
func (h *PostHandler) cards(ctx context.Context, posts []models.Post) ([]models.PostCard, error) {
	ids := make([]uint, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	thumbs, err := h.repos.Posts.GetThumbnails(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]models.PostCard, len(posts))
	for i, post := range posts {
		cards[i] = models.PostCard{Post: post}
		if thumb, ok := thumbs[post.ID]; ok {
			cards[i].Thumbnail = &thumb
		}
	}
	return cards, nil
}

func (h *PostHandler) fillEngagement(ctx context.Context, detail *PostDetail, viewerID uint) error {
	var err error
	postID := detail.Post.ID
	if detail.LikesCount, err = h.repos.Engagements.Count(ctx, postID, models.EngagementLike); err != nil {
		return err
	}
	if detail.VisitsCount, err = h.repos.Engagements.Count(ctx, postID, models.EngagementVisit); err != nil {
		return err
	}
	if viewerID == 0 {
		return nil
	}

	liked, err := h.repos.Engagements.IsMember(ctx, postID, viewerID, models.EngagementLike)
	if err != nil {
		return err
	}
	visited, err := h.repos.Engagements.IsMember(ctx, postID, viewerID, models.EngagementVisit)
	if err != nil {
		return err
	}
	detail.IsLiked = &liked
	detail.IsVisited = &visited
	return nil
}

// locate geocodes the post address. A failed lookup yields no coordinates.
func (h *PostHandler) locate(ctx context.Context, post *models.Post) *geocoder.Coordinates {
	coords, err := h.geocoder.Resolve(ctx, post.Address)
	if err != nil {
		if !errors.Is(err, geocoder.ErrDisabled) {
			metrics.GeocodeFailures.Inc()
			h.log.Warn("geocoding failed", zap.Uint("post_id", post.ID), zap.String("address", post.Address), zap.Error(err))
		}
		return nil
	}
	return &coords
}

// storeImages uploads every image, removing the ones already stored if one fails
func (h *PostHandler) storeImages(ctx context.Context, uploads []validators.ImageUpload) ([]models.PostImage, error) {
	images := make([]models.PostImage, 0, len(uploads))
	for _, upload := range uploads {
		obj, err := h.putImage(ctx, upload)
		if err != nil {
			h.discardImages(context.WithoutCancel(ctx), images)
			return nil, fmt.Errorf("store %s: %w", upload.Header.Filename, err)
		}
		images = append(images, models.PostImage{
			ObjectKey:   obj.Key,
			URL:         obj.URL,
			ContentType: obj.ContentType,
			Size:        obj.Size,
		})
	}
	return images, nil
}

func (h *PostHandler) putImage(ctx context.Context, upload validators.ImageUpload) (storage.Object, error) {
	src, err := upload.Header.Open()
	if err != nil {
		return storage.Object{}, err
	}
	defer src.Close()

	return h.images.Put(ctx, upload.Header.Filename, src, upload.Header.Size, upload.ContentType)
}

func (h *PostHandler) discardImages(ctx context.Context, images []models.PostImage) {
	for _, img := range images {
		if err := h.images.Delete(ctx, img.ObjectKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			h.log.Warn("failed to delete image blob", zap.String("key", img.ObjectKey), zap.Error(err))
		}
	}
}

// removeReviews drops the reviews of a deleted post and the emotes left on them
func (h *PostHandler) removeReviews(ctx context.Context, postID uint) {
	reviewIDs, err := h.repos.Reviews.DeleteReviewsByPostID(ctx, postID)
	if err != nil {
		h.log.Warn("failed to delete reviews", zap.Uint("post_id", postID), zap.Error(err))
		return
	}
	if err := h.repos.Emotes.DeleteEmotesByReviewIDs(ctx, reviewIDs); err != nil {
		h.log.Warn("failed to delete emotes", zap.Uint("post_id", postID), zap.Error(err))
	}
}

func postLocation(id uint) string {
	return fmt.Sprintf("%s/%d", postsPath, id)
}
