package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/storage"
)

func newTestApp(t *testing.T, maps *storage.S3Client) (*fiber.App, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	app := fiber.New()
	Register(app, New(&database.DB{DB: mockDB}, nil, nil, maps))
	return app, mock
}

func TestSiteMapRoutesUnconfigured(t *testing.T) {
	app, _ := newTestApp(t, nil)

	for _, method := range []string{"GET", "POST", "DELETE"} {
		req := httptest.NewRequest(method, "/api/sites/1/map", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s request failed: %v", method, err)
		}
		if resp.StatusCode != 503 {
			t.Errorf("%s: expected 503 without map storage, got %d", method, resp.StatusCode)
		}
	}
}

func TestDeleteSiteMapNotFound(t *testing.T) {
	maps, err := storage.NewS3Client(context.Background(), "eu-west-2", "test-bucket", time.Minute)
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	app, mock := newTestApp(t, maps)

	mock.ExpectQuery(`SELECT .+ FROM site_maps`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"site_id", "object_key", "content_type", "uploaded_at"}))

	req := httptest.NewRequest("DELETE", "/api/sites/3/map", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for site without a map, got %d", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
