package repositories

import (
	"gorm.io/gorm"

	"github.com/goer-app/goer/backend/internal/models"
)

// AutoMigrate creates the relational tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Session{}, &models.Notification{})
}
