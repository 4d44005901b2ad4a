package clients

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

func recordActivity(c *fiber.Ctx, db *gorm.DB, format string, args ...interface{}) {
	if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
		_ = activity.Record(db, userID, fmt.Sprintf(format, args...))
	}
}

type ClientResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
	Active  bool   `json:"active"`
}

type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

func clientResponse(cl models.Client) ClientResponse {
	return ClientResponse{
		ID:      cl.ID,
		Name:    cl.Name,
		Email:   cl.Email,
		Phone:   cl.Phone,
		Address: cl.Address,
		TaxID:   cl.TaxID,
		Active:  cl.Active,
	}
}

// GET /api/clients
func ListClientsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var clients []models.Client
		if err := db.Order("name asc").Find(&clients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list clients")
		}

		res := make([]ClientResponse, 0, len(clients))
		for _, cl := range clients {
			res = append(res, clientResponse(cl))
		}
		return c.JSON(res)
	}
}

// GET /api/clients/search returns the trimmed payload for the invoice
// screen's client picker.
func SearchClientsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type pickerEntry struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			TaxID string `json:"tax_id"`
		}

		var clients []models.Client
		if err := db.Select("id, name, tax_id").
			Where("active = ?", true).
			Order("name asc").
			Find(&clients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not search clients")
		}

		res := make([]pickerEntry, 0, len(clients))
		for _, cl := range clients {
			res = append(res, pickerEntry{ID: cl.ID, Name: cl.Name, TaxID: cl.TaxID})
		}
		return c.JSON(res)
	}
}

// POST /api/clients
func CreateClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		cl := models.Client{
			Name:    body.Name,
			Email:   strings.TrimSpace(body.Email),
			Phone:   strings.TrimSpace(body.Phone),
			Address: strings.TrimSpace(body.Address),
			TaxID:   strings.TrimSpace(body.TaxID),
			Active:  true,
		}

		if err := db.Create(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create client")
		}

		recordActivity(c, db, "Client '%s' created", cl.Name)
		return c.Status(fiber.StatusCreated).JSON(clientResponse(cl))
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cl models.Client
		if err := db.First(&cl, "id = ?", c.Params("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "client not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load client")
		}

		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		cl.Name = body.Name
		cl.Email = strings.TrimSpace(body.Email)
		cl.Phone = strings.TrimSpace(body.Phone)
		cl.Address = strings.TrimSpace(body.Address)
		cl.TaxID = strings.TrimSpace(body.TaxID)

		if err := db.Save(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update client")
		}

		return c.JSON(clientResponse(cl))
	}
}

// DELETE /api/clients/:id
// Clients with invoices cannot simply disappear; they are deactivated.
func DeactivateClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := db.Model(&models.Client{}).
			Where("id = ?", c.Params("id")).
			Update("active", false)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not deactivate client")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}

		recordActivity(c, db, "Client #%s deactivated", c.Params("id"))
		return c.JSON(fiber.Map{"message": "client deactivated"})
	}
}
