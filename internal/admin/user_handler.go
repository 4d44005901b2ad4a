package admin

import (
	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	IsActive bool            `json:"is_active"`
}

type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type UpdateUserRequest struct {
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}

// GET /api/users
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.Order("id asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list users")
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, UserResponse{
				ID:       u.ID,
				Name:     u.Name,
				Email:    u.Email,
				Role:     u.Role,
				IsActive: u.IsActive,
			})
		}
		return c.JSON(res)
	}
}

// PUT /api/users/:id/active
func SetUserActiveHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetUserActiveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.IsActive == nil {
			return fiber.NewError(fiber.StatusBadRequest, "is_active is required")
		}

		res := db.Model(&models.User{}).
			Where("id = ?", c.Params("id")).
			Update("is_active", *body.IsActive)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update user status")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}

		return c.JSON(fiber.Map{"message": "status updated"})
	}
}

// PUT /api/users/:id updates role and/or active flag in one call.
func UpdateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		updates := map[string]interface{}{}
		if body.Role != nil {
			if *body.Role != models.RoleAdmin && *body.Role != models.RoleUser {
				return fiber.NewError(fiber.StatusBadRequest, "role must be 'admin' or 'user'")
			}
			updates["role"] = *body.Role
		}
		if body.IsActive != nil {
			updates["is_active"] = *body.IsActive
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
		}

		res := db.Model(&models.User{}).
			Where("id = ?", c.Params("id")).
			Updates(updates)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update user")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}

		return c.JSON(fiber.Map{"message": "user updated"})
	}
}

// DELETE /api/users/:id
func DeleteUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := db.Delete(&models.User{}, "id = ?", c.Params("id"))
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete user")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}

		return c.JSON(fiber.Map{"message": "user deleted"})
	}
}
