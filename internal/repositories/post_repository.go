package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/placenote/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post, tagNames []string, images []models.PostImage, facilityCodes []string) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, query string) ([]models.Post, error)
	GetThumbnails(ctx context.Context, postIDs []uint) (map[uint]models.PostImage, error)
	GetFacilities(ctx context.Context, postID uint) ([]models.Facility, error)
	UpdatePost(ctx context.Context, update *PostUpdate) ([]models.PostImage, error)
	DeletePost(ctx context.Context, postID, requesterID uint) ([]models.PostImage, error)
}

// PostUpdate carries everything an owner can change in one update submission
type PostUpdate struct {
	PostID            uint
	EditorID          uint
	Title             string
	Address           string
	TagNames          []string
	DeleteImageIDs    []uint
	DeleteFacilityIDs []uint
	NewImages         []models.PostImage
	NewFacilities     []string
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost writes the post with its tags, image rows and facilities in one transaction
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post, tagNames []string, images []models.PostImage, facilityCodes []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if err := replacePostTags(tx, post, tagNames); err != nil {
			return err
		}
		if err := createImages(tx, post.ID, images); err != nil {
			return err
		}
		post.Images = images
		return createFacilities(tx, post.ID, facilityCodes)
	})
}

// GetPostByID retrieves a post with its tags and images (in insertion order)
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.id") }).
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// GetAllPosts retrieves every post, newest first
func (r *PostgresPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Preload("Tags").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchPosts retrieves posts whose title or address contains query, ignoring case
func (r *PostgresPostRepository) SearchPosts(ctx context.Context, query string) ([]models.Post, error) {
	var posts []models.Post
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(address) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetThumbnails returns the first image of each post that has one, using a single query
func (r *PostgresPostRepository) GetThumbnails(ctx context.Context, postIDs []uint) (map[uint]models.PostImage, error) {
	result := make(map[uint]models.PostImage)
	if len(postIDs) == 0 {
		return result, nil
	}
	var images []models.PostImage
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Order("post_id, id").Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, ok := result[img.PostID]; !ok {
			result[img.PostID] = img
		}
	}
	return result, nil
}

// GetFacilities retrieves the facilities attached to a post
func (r *PostgresPostRepository) GetFacilities(ctx context.Context, postID uint) ([]models.Facility, error) {
	var facilities []models.Facility
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&facilities).Error; err != nil {
		return nil, err
	}
	return facilities, nil
}

// UpdatePost applies an owner's update in one transaction and returns the image rows it removed.
// Delete ids that do not belong to the post are ignored.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, update *PostUpdate) ([]models.PostImage, error) {
	var removed []models.PostImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, update.PostID).Error; err != nil {
			return notFound(err)
		}
		if post.UserID != update.EditorID {
			return ErrForbidden
		}

		post.Title = update.Title
		post.Address = update.Address
		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return err
		}
		if err := replacePostTags(tx, &post, update.TagNames); err != nil {
			return err
		}

		if len(update.DeleteImageIDs) > 0 {
			if err := tx.Where("post_id = ? AND id IN ?", post.ID, update.DeleteImageIDs).Find(&removed).Error; err != nil {
				return err
			}
			if len(removed) > 0 {
				if err := tx.Delete(&removed).Error; err != nil {
					return err
				}
			}
		}
		if len(update.DeleteFacilityIDs) > 0 {
			if err := tx.Where("post_id = ? AND id IN ?", post.ID, update.DeleteFacilityIDs).Delete(&models.Facility{}).Error; err != nil {
				return err
			}
		}

		if err := createImages(tx, post.ID, update.NewImages); err != nil {
			return err
		}
		return createFacilities(tx, post.ID, update.NewFacilities)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// DeletePost removes an owner's post with its images, facilities, tag edges and
// like/visit sets, returning the image rows so their blobs can be dropped
func (r *PostgresPostRepository) DeletePost(ctx context.Context, postID, requesterID uint) ([]models.PostImage, error) {
	var images []models.PostImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			return notFound(err)
		}
		if post.UserID != requesterID {
			return ErrForbidden
		}

		if err := tx.Where("post_id = ?", post.ID).Find(&images).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.PostImage{}, &models.Facility{}, &models.PostEngagement{}} {
			if err := tx.Where("post_id = ?", post.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func createImages(tx *gorm.DB, postID uint, images []models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].PostID = postID
	}
	return tx.Create(&images).Error
}

func createFacilities(tx *gorm.DB, postID uint, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	facilities := make([]models.Facility, len(codes))
	for i, code := range codes {
		facilities[i] = models.Facility{PostID: postID, Code: code}
	}
	return tx.Create(&facilities).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
