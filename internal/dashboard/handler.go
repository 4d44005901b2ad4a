package dashboard

import (
	"time"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/dashboard/stats
func StatsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var invoicesToday int64
		if err := db.Model(&models.Invoice{}).
			Where("created_at >= ?", dayStart).
			Count(&invoicesToday).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
		}

		var revenueMonth float64
		if err := db.Model(&models.Invoice{}).
			Where("created_at >= ?", monthStart).
			Select("COALESCE(SUM(total), 0)").
			Scan(&revenueMonth).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
		}

		var activeUsers int64
		if err := db.Model(&models.User{}).
			Where("is_active = ?", true).
			Count(&activeUsers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
		}

		var pendingInvoices int64
		if err := db.Model(&models.Invoice{}).
			Where("status = ?", models.InvoiceStatusIssued).
			Count(&pendingInvoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load stats")
		}

		return c.JSON(fiber.Map{
			"invoices_today":   invoicesToday,
			"revenue_month":    revenueMonth,
			"active_users":     activeUsers,
			"pending_invoices": pendingInvoices,
		})
	}
}

// GET /api/dashboard/weekly-sales
// Seven weekday buckets over the trailing week, for the sales chart.
func WeeklySalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		since := time.Now().AddDate(0, 0, -7)

		var invoices []models.Invoice
		if err := db.Select("total, created_at").
			Where("created_at >= ?", since).
			Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load weekly sales")
		}

		labels := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		data := make([]float64, 7)
		for _, inv := range invoices {
			data[int(inv.CreatedAt.Weekday())] += inv.Total
		}

		return c.JSON(fiber.Map{
			"labels": labels,
			"data":   data,
		})
	}
}

// GET /api/dashboard/latest-invoices
func LatestInvoicesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var invoices []models.Invoice
		if err := db.Preload("Client").
			Order("created_at DESC").
			Limit(5).
			Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load latest invoices")
		}

		type latestRow struct {
			ID         uint    `json:"id"`
			ClientName string  `json:"client_name"`
			Total      float64 `json:"total"`
			CreatedAt  string  `json:"created_at"`
		}

		rows := make([]latestRow, 0, len(invoices))
		for _, inv := range invoices {
			rows = append(rows, latestRow{
				ID:         inv.ID,
				ClientName: inv.Client.Name,
				Total:      inv.Total,
				CreatedAt:  inv.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(rows)
	}
}

// GET /api/dashboard/recent-activity
func RecentActivityHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entries []models.ActivityLog
		if err := db.Order("created_at DESC").
			Limit(5).
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recent activity")
		}

		type activityRow struct {
			Description string `json:"description"`
			UserName    string `json:"user_name"`
			CreatedAt   string `json:"created_at"`
		}

		rows := make([]activityRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, activityRow{
				Description: e.Description,
				UserName:    e.UserName,
				CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(rows)
	}
}
