package billing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineRequest is one (product, quantity) entry of an invoice request.
type LineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Result is the outcome of a successful invoice creation.
type Result struct {
	Invoice    models.Invoice
	Deductions []LotDeduction
}

// Service turns a cart of (product, quantity) lines into a persisted
// invoice while depleting stock from FIFO lots. Everything happens in one
// transaction: on any failure no invoice, line, or lot change survives.
type Service struct {
	db      *gorm.DB
	taxRate float64
}

func NewService(db *gorm.DB, taxRate float64) *Service {
	return &Service{db: db, taxRate: taxRate}
}

// CreateInvoice processes lines in caller order. Each line snapshots the
// product's current price, allocates stock from the oldest lots and keeps
// the product's cached stock_total in step with the lot decrements.
func (s *Service) CreateInvoice(ctx context.Context, clientID, userID uint, lines []LineRequest) (*Result, error) {
	if clientID == 0 || userID == 0 || len(lines) == 0 {
		return nil, ErrInvalidRequest
	}
	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return nil, ErrInvalidRequest
		}
	}

	var result Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := 0.0
		invLines := make([]models.InvoiceLine, 0, len(lines))

		for _, line := range lines {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, line.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d not found", ErrInvalidRequest, line.ProductID)
				}
				return fmt.Errorf("load product %d: %w", line.ProductID, err)
			}

			if line.Quantity > product.StockTotal {
				return &InsufficientStockError{ProductID: product.ID}
			}
			if product.LotTracked {
				deductions, err := allocateFIFO(tx, product.ID, line.Quantity)
				if err != nil {
					return err
				}
				result.Deductions = append(result.Deductions, deductions...)
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
				Update("stock_total", gorm.Expr("stock_total - ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("update stock total for product %d: %w", product.ID, err)
			}

			lineSubtotal := round2(float64(line.Quantity) * product.Price)
			invLines = append(invLines, models.InvoiceLine{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  lineSubtotal,
			})
			subtotal += lineSubtotal
		}

		subtotal = round2(subtotal)
		tax := round2(subtotal * s.taxRate)
		invoice := models.Invoice{
			ClientID: clientID,
			UserID:   userID,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    round2(subtotal + tax),
			Status:   models.InvoiceStatusIssued,
			Lines:    invLines,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		result.Invoice = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
