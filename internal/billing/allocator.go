package billing

import (
	"fmt"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LotDeduction records how much was taken from one lot during allocation.
type LotDeduction struct {
	LotID    uint `json:"lot_id"`
	Quantity int  `json:"quantity"`
}

// allocateFIFO deducts qty from the product's lots, oldest entry date first
// (lot id breaks ties so depletion order is deterministic). Must run inside
// the invoice transaction: the lot rows are locked FOR UPDATE, and every
// decrement is guarded by the availability we read, so a concurrent
// allocation slipping through on a driver without row locks surfaces as
// ErrAllocationRace instead of a negative quantity.
func allocateFIFO(tx *gorm.DB, productID uint, qty int) ([]LotDeduction, error) {
	var lots []models.Lot
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND available_quantity > 0", productID).
		Order("entry_date ASC, id ASC").
		Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}

	available := 0
	for _, lot := range lots {
		available += lot.AvailableQuantity
	}
	if available < qty {
		return nil, &InsufficientStockError{ProductID: productID}
	}

	remaining := qty
	deductions := make([]LotDeduction, 0, len(lots))
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		take := remaining
		if lot.AvailableQuantity < take {
			take = lot.AvailableQuantity
		}
		res := tx.Model(&models.Lot{}).
			Where("id = ? AND available_quantity = ?", lot.ID, lot.AvailableQuantity).
			Update("available_quantity", lot.AvailableQuantity-take)
		if res.Error != nil {
			return nil, fmt.Errorf("deduct lot %d: %w", lot.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrAllocationRace
		}
		deductions = append(deductions, LotDeduction{LotID: lot.ID, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, ErrAllocationRace
	}
	return deductions, nil
}
