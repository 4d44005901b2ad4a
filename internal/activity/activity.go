package activity

import (
	"fmt"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"gorm.io/gorm"
)

// Record writes one activity entry for the dashboard feed. The user name is
// resolved here so callers only need the id from the request context.
func Record(db *gorm.DB, userID uint, description string) error {
	userName := ""
	var user models.User
	if err := db.Select("name").First(&user, userID).Error; err == nil {
		userName = user.Name
	}

	entry := models.ActivityLog{
		UserID:      userID,
		UserName:    userName,
		Description: description,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}
