package repositories

import (
	"context"

	"github.com/anonto42/placenote/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository defines the interface for the like and visit sets of posts
type EngagementRepository interface {
	Toggle(ctx context.Context, postID, userID uint, kind models.EngagementKind) (models.EngagementState, error)
	Count(ctx context.Context, postID uint, kind models.EngagementKind) (int64, error)
	IsMember(ctx context.Context, postID, userID uint, kind models.EngagementKind) (bool, error)
	GetPostIDsByUser(ctx context.Context, userID uint, kind models.EngagementKind) ([]uint, error)
}

// PostgresEngagementRepository implements EngagementRepository for PostgreSQL
type PostgresEngagementRepository struct {
	db *gorm.DB
}

// NewPostgresEngagementRepository creates a new PostgresEngagementRepository
func NewPostgresEngagementRepository(db *gorm.DB) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{db: db}
}

// Toggle flips the user's membership in one set of a post. The delete either
// removes the membership or reports nothing to remove, in which case the row is
// inserted; the unique index turns a concurrent duplicate insert into a no-op,
// after which the stored membership is reported.
func (r *PostgresEngagementRepository) Toggle(ctx context.Context, postID, userID uint, kind models.EngagementKind) (models.EngagementState, error) {
	var state models.EngagementState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).Delete(&models.PostEngagement{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			row := models.PostEngagement{PostID: postID, UserID: userID, Kind: kind}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if ins.Error != nil {
				return ins.Error
			}
			state.Active = ins.RowsAffected > 0
			if !state.Active {
				// a concurrent toggle inserted first; report what is stored
				var members int64
				if err := tx.Model(&models.PostEngagement{}).
					Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
					Count(&members).Error; err != nil {
					return err
				}
				state.Active = members > 0
			}
		}
		return tx.Model(&models.PostEngagement{}).Where("post_id = ? AND kind = ?", postID, kind).Count(&state.Count).Error
	})
	return state, err
}

// Count returns the size of one set of a post
func (r *PostgresEngagementRepository) Count(ctx context.Context, postID uint, kind models.EngagementKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostEngagement{}).Where("post_id = ? AND kind = ?", postID, kind).Count(&count).Error
	return count, err
}

// IsMember checks whether the user belongs to one set of a post
func (r *PostgresEngagementRepository) IsMember(ctx context.Context, postID, userID uint, kind models.EngagementKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostEngagement{}).
		Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
		Count(&count).Error
	return count > 0, err
}

// GetPostIDsByUser lists the posts a user liked or visited, most recent first
func (r *PostgresEngagementRepository) GetPostIDsByUser(ctx context.Context, userID uint, kind models.EngagementKind) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PostEngagement{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("id DESC").
		Pluck("post_id", &ids).Error
	return ids, err
}
