package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SebasIsd/SistemaTech/internal/database"
	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newDashboardApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Get("/api/dashboard/stats", StatsHandler(db))
	app.Get("/api/dashboard/weekly-sales", WeeklySalesHandler(db))
	app.Get("/api/dashboard/latest-invoices", LatestInvoicesHandler(db))
	app.Get("/api/dashboard/recent-activity", RecentActivityHandler(db))
	return app
}

func get(t *testing.T, app *fiber.App, path string, out interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("%s status = %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func seedInvoice(t *testing.T, db *gorm.DB, clientID, userID uint, total float64, createdAt time.Time, status models.InvoiceStatus) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		ClientID:  clientID,
		UserID:    userID,
		Subtotal:  total,
		Total:     total,
		Status:    status,
		CreatedAt: createdAt,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	return inv
}

func TestStatsHandler(t *testing.T) {
	db := setupTestDB(t)
	app := newDashboardApp(db)

	client := models.Client{Name: "Acme", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	active := models.User{Name: "A", Email: "a@test", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	inactive := models.User{Name: "B", Email: "b@test", PasswordHash: "x", Role: models.RoleUser, IsActive: false}
	if err := db.Create(&active).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	now := time.Now()
	seedInvoice(t, db, client.ID, active.ID, 100, now, models.InvoiceStatusIssued)
	seedInvoice(t, db, client.ID, active.ID, 50, now, models.InvoiceStatusPaid)
	// Last month, must not count toward today or this month's revenue.
	seedInvoice(t, db, client.ID, active.ID, 999, now.AddDate(0, -1, 0), models.InvoiceStatusPaid)

	var stats struct {
		InvoicesToday   int64   `json:"invoices_today"`
		RevenueMonth    float64 `json:"revenue_month"`
		ActiveUsers     int64   `json:"active_users"`
		PendingInvoices int64   `json:"pending_invoices"`
	}
	get(t, app, "/api/dashboard/stats", &stats)

	if stats.InvoicesToday != 2 {
		t.Fatalf("invoices_today = %d, want 2", stats.InvoicesToday)
	}
	if stats.RevenueMonth != 150 {
		t.Fatalf("revenue_month = %v, want 150", stats.RevenueMonth)
	}
	if stats.ActiveUsers != 1 {
		t.Fatalf("active_users = %d, want 1", stats.ActiveUsers)
	}
	if stats.PendingInvoices != 1 {
		t.Fatalf("pending_invoices = %d, want 1", stats.PendingInvoices)
	}
}

func TestWeeklySalesBucketsByWeekday(t *testing.T) {
	db := setupTestDB(t)
	app := newDashboardApp(db)

	client := models.Client{Name: "Acme", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	user := models.User{Name: "A", Email: "a@test", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	now := time.Now()
	seedInvoice(t, db, client.ID, user.ID, 40, now, models.InvoiceStatusIssued)
	seedInvoice(t, db, client.ID, user.ID, 60, now, models.InvoiceStatusIssued)
	// Older than the trailing week, excluded.
	seedInvoice(t, db, client.ID, user.ID, 500, now.AddDate(0, 0, -10), models.InvoiceStatusIssued)

	var body struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
	}
	get(t, app, "/api/dashboard/weekly-sales", &body)

	if len(body.Labels) != 7 || len(body.Data) != 7 {
		t.Fatalf("expected 7 buckets, got %d/%d", len(body.Labels), len(body.Data))
	}
	if got := body.Data[int(now.Weekday())]; got != 100 {
		t.Fatalf("today's bucket = %v, want 100", got)
	}
	var sum float64
	for _, v := range body.Data {
		sum += v
	}
	if sum != 100 {
		t.Fatalf("total over week = %v, want 100", sum)
	}
}

func TestLatestInvoicesLimitAndOrder(t *testing.T) {
	db := setupTestDB(t)
	app := newDashboardApp(db)

	client := models.Client{Name: "Acme", Active: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	user := models.User{Name: "A", Email: "a@test", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	now := time.Now()
	var newest models.Invoice
	for i := 0; i < 7; i++ {
		newest = seedInvoice(t, db, client.ID, user.ID, float64(10*(i+1)),
			now.Add(-time.Duration(6-i)*time.Hour), models.InvoiceStatusIssued)
	}

	var rows []struct {
		ID         uint    `json:"id"`
		ClientName string  `json:"client_name"`
		Total      float64 `json:"total"`
	}
	get(t, app, "/api/dashboard/latest-invoices", &rows)

	if len(rows) != 5 {
		t.Fatalf("latest returned %d rows, want 5", len(rows))
	}
	if rows[0].ID != newest.ID {
		t.Fatalf("first row is %d, want newest %d", rows[0].ID, newest.ID)
	}
	if rows[0].ClientName != "Acme" {
		t.Fatalf("client name = %q", rows[0].ClientName)
	}
}

func TestRecentActivityLimit(t *testing.T) {
	db := setupTestDB(t)
	app := newDashboardApp(db)

	now := time.Now()
	for i := 0; i < 8; i++ {
		entry := models.ActivityLog{
			UserID:      1,
			UserName:    "Op",
			Description: fmt.Sprintf("action %d", i),
			CreatedAt:   now.Add(-time.Duration(7-i) * time.Minute),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("activity: %v", err)
		}
	}

	var rows []struct {
		Description string `json:"description"`
		UserName    string `json:"user_name"`
	}
	get(t, app, "/api/dashboard/recent-activity", &rows)

	if len(rows) != 5 {
		t.Fatalf("recent activity returned %d rows, want 5", len(rows))
	}
	if rows[0].Description != "action 7" {
		t.Fatalf("first row = %q, want newest entry", rows[0].Description)
	}
}
