package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID       uint   `gorm:"primaryKey"`
	ClientID uint   `gorm:"index;not null"`
	Client   Client `gorm:"foreignKey:ClientID"`
	// Operator who issued the invoice.
	UserID   uint          `gorm:"index;not null"`
	User     User          `gorm:"foreignKey:UserID"`
	Subtotal float64       `gorm:"not null"`
	Tax      float64       `gorm:"not null"`
	Total    float64       `gorm:"not null"`
	Status   InvoiceStatus `gorm:"size:20;not null;default:'issued'"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceLine snapshots the product's unit price at the time of sale.
// Later price changes never affect an already persisted line.
type InvoiceLine struct {
	ID        uint    `gorm:"primaryKey"`
	InvoiceID uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
	Subtotal  float64 `gorm:"not null"`
}
