package billing

import (
	"errors"
	"fmt"

	"github.com/SebasIsd/SistemaTech/internal/activity"
	"github.com/SebasIsd/SistemaTech/internal/auth"
	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateInvoiceRequest struct {
	ClientID uint          `json:"client_id"`
	Lines    []LineRequest `json:"lines"`
}

type InvoiceSummary struct {
	ID          uint    `json:"id"`
	ClientID    uint    `json:"client_id"`
	ClientName  string  `json:"client_name"`
	ClientTaxID string  `json:"client_tax_id"`
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

type InvoiceLineDetail struct {
	ProductID          uint    `json:"product_id"`
	ProductName        string  `json:"product_name"`
	ProductDescription string  `json:"product_description"`
	Quantity           int     `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	Subtotal           float64 `json:"subtotal"`
}

type InvoiceDetail struct {
	InvoiceSummary
	ClientAddress string              `json:"client_address"`
	ClientPhone   string              `json:"client_phone"`
	Lines         []InvoiceLineDetail `json:"lines"`
}

// POST /api/invoices
func CreateInvoiceHandler(db *gorm.DB, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "missing user information")
		}

		var client models.Client
		if err := db.First(&client, body.ClientID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "client not found")
		}

		res, err := svc.CreateInvoice(c.UserContext(), body.ClientID, userID, body.Lines)
		if err != nil {
			var stockErr *InsufficientStockError
			switch {
			case errors.Is(err, ErrInvalidRequest):
				return fiber.NewError(fiber.StatusBadRequest, "invoice needs at least one line with a positive quantity")
			case errors.As(err, &stockErr):
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("insufficient stock for product %d", stockErr.ProductID))
			case errors.Is(err, ErrAllocationRace):
				return fiber.NewError(fiber.StatusConflict, "stock changed while allocating, retry the invoice")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "could not create invoice")
			}
		}

		_ = activity.Record(db, userID,
			fmt.Sprintf("Invoice #%d issued to %s for %.2f", res.Invoice.ID, client.Name, res.Invoice.Total))

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":         res.Invoice.ID,
			"subtotal":   res.Invoice.Subtotal,
			"tax":        res.Invoice.Tax,
			"total":      res.Invoice.Total,
			"deductions": res.Deductions,
			"message":    "invoice created, stock deducted FIFO",
		})
	}
}

// GET /api/invoices
func ListInvoicesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var invoices []models.Invoice
		if err := db.Preload("Client").
			Order("created_at DESC").
			Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list invoices")
		}

		resp := make([]InvoiceSummary, 0, len(invoices))
		for _, inv := range invoices {
			resp = append(resp, summarize(inv))
		}
		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid invoice id")
		}

		var invoice models.Invoice
		if err := db.Preload("Client").Preload("Lines.Product").
			First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "invoice not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load invoice")
		}

		detail := InvoiceDetail{
			InvoiceSummary: summarize(invoice),
			ClientAddress:  invoice.Client.Address,
			ClientPhone:    invoice.Client.Phone,
			Lines:          make([]InvoiceLineDetail, 0, len(invoice.Lines)),
		}
		for _, line := range invoice.Lines {
			detail.Lines = append(detail.Lines, InvoiceLineDetail{
				ProductID:          line.ProductID,
				ProductName:        line.Product.Name,
				ProductDescription: line.Product.Description,
				Quantity:           line.Quantity,
				UnitPrice:          line.UnitPrice,
				Subtotal:           line.Subtotal,
			})
		}
		return c.JSON(detail)
	}
}

func summarize(inv models.Invoice) InvoiceSummary {
	return InvoiceSummary{
		ID:          inv.ID,
		ClientID:    inv.ClientID,
		ClientName:  inv.Client.Name,
		ClientTaxID: inv.Client.TaxID,
		Subtotal:    inv.Subtotal,
		Tax:         inv.Tax,
		Total:       inv.Total,
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
