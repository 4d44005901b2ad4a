package models

import "time"

// Lot is a received batch of a product. EntryDate defines the FIFO order.
// AvailableQuantity only ever decreases after creation; a depleted lot
// (available 0) stays in the table as history but is skipped by allocation.
type Lot struct {
	ID                uint      `gorm:"primaryKey"`
	ProductID         uint      `gorm:"index;not null"`
	EntryDate         time.Time `gorm:"index;not null"`
	Quantity          int       `gorm:"not null"`
	AvailableQuantity int       `gorm:"not null"`
	UnitCost          float64   `gorm:"not null"`
	ExpiryDate        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
