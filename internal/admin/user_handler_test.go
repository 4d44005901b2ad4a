package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

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

func newAdminApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "unexpected server error"})
		},
	})
	app.Get("/api/users", ListUsersHandler(db))
	app.Put("/api/users/:id/active", SetUserActiveHandler(db))
	app.Put("/api/users/:id", UpdateUserHandler(db))
	app.Delete("/api/users/:id", DeleteUserHandler(db))
	return app
}

func seedUser(t *testing.T, db *gorm.DB, email string, active bool) models.User {
	t.Helper()
	u := models.User{Name: "U " + email, Email: email, PasswordHash: "x", Role: models.RoleUser, IsActive: active}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func request(t *testing.T, app *fiber.App, method, path string, payload interface{}) *http.Response {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func TestListUsersOmitsPasswordHash(t *testing.T) {
	db := setupTestDB(t)
	app := newAdminApp(db)
	seedUser(t, db, "a@test", true)
	seedUser(t, db, "b@test", false)

	resp := request(t, app, http.MethodGet, "/api/users", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}

	var raw []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("listed %d users, want 2", len(raw))
	}
	for _, row := range raw {
		if _, leaked := row["password_hash"]; leaked {
			t.Fatal("password hash leaked in user listing")
		}
	}
}

func TestActivateUser(t *testing.T) {
	db := setupTestDB(t)
	app := newAdminApp(db)
	u := seedUser(t, db, "a@test", false)

	active := true
	resp := request(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d/active", u.ID), SetUserActiveRequest{
		IsActive: &active,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("activate status = %d", resp.StatusCode)
	}

	var reloaded models.User
	if err := db.First(&reloaded, u.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsActive {
		t.Fatal("user still inactive")
	}

	resp = request(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d/active", u.ID), SetUserActiveRequest{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing flag status = %d, want 400", resp.StatusCode)
	}

	resp = request(t, app, http.MethodPut, "/api/users/9999/active", SetUserActiveRequest{IsActive: &active})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateUserRole(t *testing.T) {
	db := setupTestDB(t)
	app := newAdminApp(db)
	u := seedUser(t, db, "a@test", true)

	role := models.RoleAdmin
	resp := request(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), UpdateUserRequest{Role: &role})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	var reloaded models.User
	if err := db.First(&reloaded, u.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", reloaded.Role)
	}

	bad := models.UserRole("superuser")
	resp = request(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), UpdateUserRequest{Role: &bad})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad role status = %d, want 400", resp.StatusCode)
	}

	resp = request(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), UpdateUserRequest{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("empty update status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	app := newAdminApp(db)
	u := seedUser(t, db, "a@test", true)

	resp := request(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Fatal("user survived delete")
	}

	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}
