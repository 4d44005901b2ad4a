package models

import "time"

// ActivityLog feeds the dashboard's recent-activity feed.
type ActivityLog struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	UserName    string `gorm:"size:100"`
	Description string `gorm:"size:255;not null"`
	CreatedAt   time.Time
}
