package catalog

import (
	"errors"
	"time"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LotResponse struct {
	ID                uint    `json:"id"`
	ProductID         uint    `json:"product_id"`
	EntryDate         string  `json:"entry_date"`
	Quantity          int     `json:"quantity"`
	AvailableQuantity int     `json:"available_quantity"`
	UnitCost          float64 `json:"unit_cost"`
	ExpiryDate        string  `json:"expiry_date,omitempty"`
}

type LotRequest struct {
	Quantity   int     `json:"quantity"`
	EntryDate  string  `json:"entry_date"` // "2006-01-02"
	UnitCost   float64 `json:"unit_cost"`
	ExpiryDate string  `json:"expiry_date"` // optional
}

func lotResponse(l models.Lot) LotResponse {
	r := LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		EntryDate:         l.EntryDate.Format("2006-01-02"),
		Quantity:          l.Quantity,
		AvailableQuantity: l.AvailableQuantity,
		UnitCost:          l.UnitCost,
	}
	if l.ExpiryDate != nil {
		r.ExpiryDate = l.ExpiryDate.Format("2006-01-02")
	}
	return r
}

// recomputeStockTotal refreshes the product's cached total from its lots.
// Runs inside the same transaction as the lot mutation that invalidated it.
func recomputeStockTotal(tx *gorm.DB, productID uint) error {
	var total int64
	if err := tx.Model(&models.Lot{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(available_quantity), 0)").
		Scan(&total).Error; err != nil {
		return err
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_total", total).Error
}

// GET /api/products/:id/lots
// Lots come back in FIFO order, depleted lots included as history.
func ListLotsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var lots []models.Lot
		if err := db.Where("product_id = ?", productID).
			Order("entry_date ASC, id ASC").
			Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list lots")
		}

		res := make([]LotResponse, 0, len(lots))
		for _, l := range lots {
			res = append(res, lotResponse(l))
		}
		return c.JSON(res)
	}
}

// POST /api/products/:id/lots
func CreateLotHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var p models.Product
		if err := db.First(&p, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product not found")
		}

		var body LotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		lot, ferr := lotFromRequest(body, uint(productID))
		if ferr != nil {
			return ferr
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(lot).Error; err != nil {
				return err
			}
			return recomputeStockTotal(tx, lot.ProductID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create lot")
		}

		recordActivity(c, db, "Lot of %d units added to product '%s'", lot.Quantity, p.Name)
		return c.Status(fiber.StatusCreated).JSON(lotResponse(*lot))
	}
}

// PUT /api/lots/:id
// An update resets the available quantity to the received quantity, the
// same way the inventory screens expect a corrected lot to behave.
func UpdateLotHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var lot models.Lot
		if err := db.First(&lot, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "lot not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load lot")
		}

		var body LotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		updated, ferr := lotFromRequest(body, lot.ProductID)
		if ferr != nil {
			return ferr
		}
		lot.Quantity = updated.Quantity
		lot.AvailableQuantity = updated.Quantity
		lot.EntryDate = updated.EntryDate
		lot.UnitCost = updated.UnitCost
		lot.ExpiryDate = updated.ExpiryDate

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&lot).Error; err != nil {
				return err
			}
			return recomputeStockTotal(tx, lot.ProductID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update lot")
		}

		return c.JSON(lotResponse(lot))
	}
}

// DELETE /api/lots/:id
func DeleteLotHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var lot models.Lot
		if err := db.First(&lot, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "lot not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load lot")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&lot).Error; err != nil {
				return err
			}
			return recomputeStockTotal(tx, lot.ProductID)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete lot")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func lotFromRequest(body LotRequest, productID uint) (*models.Lot, error) {
	if body.Quantity <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}
	entryDate, err := time.Parse("2006-01-02", body.EntryDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "entry_date must be 'YYYY-MM-DD'")
	}
	if body.UnitCost < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unit_cost cannot be negative")
	}

	lot := &models.Lot{
		ProductID:         productID,
		EntryDate:         entryDate,
		Quantity:          body.Quantity,
		AvailableQuantity: body.Quantity,
		UnitCost:          body.UnitCost,
	}
	if body.ExpiryDate != "" {
		expiry, err := time.Parse("2006-01-02", body.ExpiryDate)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "expiry_date must be 'YYYY-MM-DD'")
		}
		lot.ExpiryDate = &expiry
	}
	return lot, nil
}
