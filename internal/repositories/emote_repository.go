package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/placenote/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmoteRepository defines the interface for review emote operations
type EmoteRepository interface {
	ToggleEmote(ctx context.Context, reviewID string, userID uint, emotion models.Emotion) (models.Emotion, error)
	GetEmotesByReviewIDs(ctx context.Context, reviewIDs []string) ([]models.Emote, error)
	CountEmotes(ctx context.Context, reviewID string) (likes, dislikes int64, err error)
	DeleteEmotesByReviewIDs(ctx context.Context, reviewIDs []string) error
}

type postgresEmoteRepository struct {
	db *gorm.DB
}

func NewPostgresEmoteRepository(db *gorm.DB) EmoteRepository {
	return &postgresEmoteRepository{db: db}
}

// ToggleEmote applies a reaction and returns the user's resulting emotion (0 when none).
// Repeating the same emotion removes it, the opposite emotion replaces it.
func (r *postgresEmoteRepository) ToggleEmote(ctx context.Context, reviewID string, userID uint, emotion models.Emotion) (models.Emotion, error) {
	var result models.Emotion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Emote
		err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			emote := models.Emote{ReviewID: reviewID, UserID: userID, Emotion: emotion}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&emote)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected > 0 {
				result = emotion
				return nil
			}
			// lost the race against another reaction of the same user
			if err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&existing).Error; err != nil {
				return err
			}
			result = existing.Emotion
			return nil
		case err != nil:
			return err
		case existing.Emotion == emotion:
			return tx.Delete(&existing).Error
		default:
			result = emotion
			return tx.Model(&existing).Update("emotion", emotion).Error
		}
	})
	return result, err
}

// GetEmotesByReviewIDs fetches the emotes of many reviews in one query
func (r *postgresEmoteRepository) GetEmotesByReviewIDs(ctx context.Context, reviewIDs []string) ([]models.Emote, error) {
	var emotes []models.Emote
	if len(reviewIDs) == 0 {
		return emotes, nil
	}
	err := r.db.WithContext(ctx).Where("review_id IN ?", reviewIDs).Order("id").Find(&emotes).Error
	return emotes, err
}

func (r *postgresEmoteRepository) CountEmotes(ctx context.Context, reviewID string) (int64, int64, error) {
	var rows []struct {
		Emotion models.Emotion
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Emote{}).
		Select("emotion, COUNT(*) AS total").
		Where("review_id = ?", reviewID).
		Group("emotion").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var likes, dislikes int64
	for _, row := range rows {
		switch row.Emotion {
		case models.EmotionPositive:
			likes = row.Total
		case models.EmotionNegative:
			dislikes = row.Total
		}
	}
	return likes, dislikes, nil
}

func (r *postgresEmoteRepository) DeleteEmotesByReviewIDs(ctx context.Context, reviewIDs []string) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("review_id IN ?", reviewIDs).Delete(&models.Emote{}).Error
}
