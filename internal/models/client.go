package models

import "time"

type Client struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:100;not null"`
	Email   string `gorm:"size:100"`
	Phone   string `gorm:"size:30"`
	Address string `gorm:"size:255"`
	// Fiscal identification number shown on invoices.
	TaxID string `gorm:"size:30;index"`
	// No column default, same reason as Product.LotTracked: gorm omits
	// zero-value fields with one, so a false would persist as true.
	Active    bool `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
