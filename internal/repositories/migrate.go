package repositories

import (
	"github.com/anonto42/placenote/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the PostgreSQL tables of every relational model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.PostImage{},
		&models.Facility{},
		&models.PostEngagement{},
		&models.Emote{},
	)
}
