package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SebasIsd/SistemaTech/internal/activity"
	"github.com/SebasIsd/SistemaTech/internal/auth"
	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// recordActivity logs a mutation for the dashboard feed when the request
// carries an authenticated user. Failures never affect the response.
func recordActivity(c *fiber.Ctx, db *gorm.DB, format string, args ...interface{}) {
	if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
		_ = activity.Record(db, userID, fmt.Sprintf(format, args...))
	}
}

type ProductResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	LotTracked  bool    `json:"lot_tracked"`
	StockTotal  int     `json:"stock_total"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	LotTracked  *bool   `json:"lot_tracked"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	LotTracked  *bool    `json:"lot_tracked"`
}

func productResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		LotTracked:  p.LotTracked,
		StockTotal:  p.StockTotal,
	}
}

// GET /api/products
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := db.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list products")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, productResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load product")
		}
		return c.JSON(productResponse(p))
	}
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
		}

		lotTracked := true
		if body.LotTracked != nil {
			lotTracked = *body.LotTracked
		}

		p := models.Product{
			Name:        body.Name,
			Description: strings.TrimSpace(body.Description),
			Price:       body.Price,
			Category:    strings.TrimSpace(body.Category),
			LotTracked:  lotTracked,
		}

		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create product")
		}

		recordActivity(c, db, "Product '%s' created", p.Name)
		return c.Status(fiber.StatusCreated).JSON(productResponse(p))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			p.Name = name
		}
		if body.Description != nil {
			p.Description = strings.TrimSpace(*body.Description)
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
			}
			p.Price = *body.Price
		}
		if body.Category != nil {
			p.Category = strings.TrimSpace(*body.Category)
		}
		if body.LotTracked != nil {
			p.LotTracked = *body.LotTracked
		}

		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update product")
		}

		return c.JSON(productResponse(p))
	}
}

// DELETE /api/products/:id
// Deletes the product together with its lots.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load product")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.Lot{}).Error; err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete product")
		}

		recordActivity(c, db, "Product '%s' deleted", p.Name)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
