package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest rejects empty invoices and non-positive quantities.
	ErrInvalidRequest = errors.New("invalid invoice request")

	// ErrAllocationRace means a concurrent allocation consumed stock between
	// the sufficiency check and the lot walk. The whole transaction is
	// rolled back; retrying is up to the caller.
	ErrAllocationRace = errors.New("lot allocation race detected")
)

// InsufficientStockError names the product that cannot be satisfied.
type InsufficientStockError struct {
	ProductID uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}
