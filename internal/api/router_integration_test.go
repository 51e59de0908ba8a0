//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/app"
	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/guttosm/spimexpulse/internal/storage"
)

func startPG(t *testing.T) (host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "spimex",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=spimex sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return h, mp, func() { _ = c.Terminate(context.Background()) }
}

func seedForE2E(t *testing.T, dsn string, days ...time.Time) {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	repo := storage.NewTradingResultsRepository(db)
	for _, d := range days {
		records := []models.TradingResult{
			models.NewTradingResult("A592ACH060F", "Бензин", "Ачинский НПЗ", decimal.NewFromInt(60), decimal.NewFromInt(3900000), 1, d),
			models.NewTradingResult("DTENVY065J", "ДТ", "Новоярославская", decimal.NewFromInt(65), decimal.NewFromInt(4000000), 2, d),
		}
		if _, err := repo.SaveTradingResults(context.Background(), records); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func get(t *testing.T, h http.Handler, url string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("json: %v body=%s", err, w.Body.String())
		}
	}
	return w.Code
}

func TestAPI_E2E_Queries(t *testing.T) {
	host, port, term := startPG(t)
	defer term()
	mr := miniredis.RunT(t)

	old := config.AppConfig
	defer func() { config.AppConfig = old }()
	config.AppConfig = config.Config{
		Postgres: config.PostgresConfig{
			Host:     host,
			Port:     port.Int(),
			User:     "postgres",
			Password: "postgres",
			DBName:   "spimex",
			SSLMode:  "disable",
		},
		Redis:      config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"},
		Reports:    config.ReportsConfig{BaseURL: "http://127.0.0.1:1", Dir: t.TempDir()},
		Cache:      config.CacheConfig{ResetHour: 14, ResetMinute: 11, Timezone: "UTC"},
		Ingestion:  config.IngestionConfig{QueueSize: 1},
		Migrations: config.MigrationsConfig{Auto: true},
	}

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	day1 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/spimex?sslmode=disable", host, port.Port())
	seedForE2E(t, dsn, day1, day2, day3)

	var dates []string
	if code := get(t, router, "/get_last_trading_dates/?count=2", &dates); code != http.StatusOK {
		t.Fatalf("dates status %d", code)
	}
	if len(dates) != 2 || dates[0] != "2025-04-03" || dates[1] != "2025-04-02" {
		t.Fatalf("unexpected dates %v", dates)
	}

	var dyn []map[string]any
	if code := get(t, router, "/get_dynamics/?start_date=01-04-2025&end_date=02-04-2025&oil_id=A592", &dyn); code != http.StatusOK {
		t.Fatalf("dynamics status %d", code)
	}
	if len(dyn) != 2 || dyn[0]["date"] != "2025-04-02" || dyn[1]["date"] != "2025-04-01" {
		t.Fatalf("unexpected dynamics %v", dyn)
	}

	var page1, page2 []map[string]any
	get(t, router, "/get_trading_results/?limit=4", &page1)
	get(t, router, "/get_trading_results/?limit=4&offset=4", &page2)
	if len(page1) != 4 || len(page2) != 2 {
		t.Fatalf("pages %d/%d", len(page1), len(page2))
	}
	seen := map[float64]bool{}
	for _, r := range append(page1, page2...) {
		id := r["id"].(float64)
		if seen[id] {
			t.Fatalf("id %v on both pages", id)
		}
		seen[id] = true
	}

	// query results land in the cache
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected cached entries")
	}

	if code := get(t, router, "/get_dynamics/?start_date=03-04-2025&end_date=01-04-2025", nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("reversed range status %d", code)
	}
}
