package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
)

// newRouteTestDB backs storage.DB with a throwaway in-memory database.
func newRouteTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	storage.DB = db
	return db
}

// buildTestApp wires the reservation routes against a throwaway in-memory
// database, without the JWT layer.
func buildTestApp(t *testing.T) *iris.Application {
	db := newRouteTestDB(t)

	bath := models.Bath{Name: "Парная №1", Cost: 1000, BaseGuests: 4, ExtraGuestPrice: 200}
	if err := db.Create(&bath).Error; err != nil {
		t.Fatalf("seeding bath: %v", err)
	}

	app := iris.New()
	app.Validator = validator.New()

	api := app.Party("/api/admin")
	{
		api.Get("/reservations", GetReservations)
		api.Post("/reservations", CreateReservation)
		api.Get("/reservations/{id:uint}", GetReservation)
		api.Put("/reservations/{id:uint}", UpdateReservation)
		api.Delete("/reservations/{id:uint}", DeleteReservation)
	}
	if err := app.Build(); err != nil {
		t.Fatalf("building test app: %v", err)
	}
	return app
}

func postReservation(app *iris.Application, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestCreateReservationEndpoint(t *testing.T) {
	app := buildTestApp(t)

	resp := postReservation(app, `{
		"bath_id": 1,
		"start_datetime": "2026-06-01T10:00:00",
		"end_datetime": "2026-06-01T12:00:00",
		"client_name": "Иван Петров",
		"client_phone": "+79001234567",
		"guests": 6
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var view struct {
		ReservationID uint   `json:"reservation_id"`
		TotalCost     int    `json:"total_cost"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.TotalCost != 2400 {
		t.Fatalf("expected total_cost 2400, got %d", view.TotalCost)
	}
	if view.Status != "новая" {
		t.Fatalf("expected default status, got %q", view.Status)
	}
	if view.ReservationID == 0 {
		t.Fatal("expected a reservation id")
	}
}

func TestCreateReservationEndpointOverlap(t *testing.T) {
	app := buildTestApp(t)

	first := postReservation(app, `{
		"bath_id": 1,
		"start_datetime": "2026-06-01T10:00:00",
		"end_datetime": "2026-06-01T12:00:00",
		"client_name": "Иван Петров",
		"client_phone": "+79001234567"
	}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	// Starts inside the 30-minute cleanup slot after the first one.
	second := postReservation(app, `{
		"bath_id": 1,
		"start_datetime": "2026-06-01T12:29:00",
		"end_datetime": "2026-06-01T13:30:00",
		"client_name": "Пётр Иванов",
		"client_phone": "+79007654321"
	}`)
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlapping reservation, got %d", second.Code)
	}
}

func TestCreateReservationEndpointUnknownBath(t *testing.T) {
	app := buildTestApp(t)

	resp := postReservation(app, `{
		"bath_id": 999,
		"start_datetime": "2026-06-01T10:00:00",
		"end_datetime": "2026-06-01T12:00:00",
		"client_name": "Иван Петров",
		"client_phone": "+79001234567"
	}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown bath, got %d", resp.Code)
	}
}

func TestCreateReservationEndpointClientCannotSetCost(t *testing.T) {
	app := buildTestApp(t)

	resp := postReservation(app, `{
		"bath_id": 1,
		"start_datetime": "2026-06-01T10:00:00",
		"end_datetime": "2026-06-01T12:00:00",
		"client_name": "Иван Петров",
		"client_phone": "+79001234567",
		"total_cost": 1
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var view struct {
		TotalCost int `json:"total_cost"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.TotalCost != 2000 {
		t.Fatalf("expected computed total_cost 2000, got %d", view.TotalCost)
	}
}

func TestListReservationsEndpointBadDate(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reservations?date=01.06.2026", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date filter, got %d", resp.Code)
	}
}

func TestGetReservationEndpointNotFound(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reservations/999", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeleteReservationEndpoint(t *testing.T) {
	app := buildTestApp(t)

	created := postReservation(app, `{
		"bath_id": 1,
		"start_datetime": "2026-06-01T10:00:00",
		"end_datetime": "2026-06-01T12:00:00",
		"client_name": "Иван Петров",
		"client_phone": "+79001234567"
	}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}
	var view struct {
		ReservationID uint `json:"reservation_id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	url := fmt.Sprintf("/api/admin/reservations/%d", view.ReservationID)
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, url, nil)
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp2.Code)
	}
}
