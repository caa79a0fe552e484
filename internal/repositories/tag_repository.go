package repositories

import (
	"context"

	"github.com/anonto42/placenote/backend/internal/models"
	"gorm.io/gorm"
)

// TagRepository defines the interface for tag lookups
type TagRepository interface {
	GetTagByID(ctx context.Context, id uint) (*models.Tag, error)
	GetPostsByTagID(ctx context.Context, tagID uint) ([]models.Post, error)
}

// PostgresTagRepository implements TagRepository for PostgreSQL
type PostgresTagRepository struct {
	db *gorm.DB
}

// NewPostgresTagRepository creates a new PostgresTagRepository
func NewPostgresTagRepository(db *gorm.DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

// GetTagByID retrieves a tag by ID
func (r *PostgresTagRepository) GetTagByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// GetPostsByTagID retrieves every post carrying the tag
func (r *PostgresTagRepository) GetPostsByTagID(ctx context.Context, tagID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tagID).
		Order("posts.id").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// replacePostTags makes names the complete tag set of post, creating missing tags.
// Must run inside the caller's transaction.
func replacePostTags(tx *gorm.DB, post *models.Post, names []string) error {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	assoc := tx.Model(post).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}
