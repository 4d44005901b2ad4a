package models

import "time"

type Product struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:100;not null"`
	Description string  `gorm:"size:255"`
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"size:50"`
	// No column default: gorm omits zero-value fields that carry one, which
	// would silently turn a false into true on insert. The create handler
	// owns the default instead.
	LotTracked bool `gorm:"not null"`
	// StockTotal caches SUM(available_quantity) over the product's lots.
	// It is maintained inside the same transaction as every lot mutation.
	StockTotal int   `gorm:"not null;default:0"`
	Lots       []Lot `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
