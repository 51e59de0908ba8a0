package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/cache"
)

func testConfig() config.Config {
	return config.Config{
		Postgres: config.PostgresConfig{
			Host:     "127.0.0.1",
			Port:     54329, // unlikely mapped
			User:     "x",
			Password: "y",
			DBName:   "z",
			SSLMode:  "disable",
		},
		Redis:     config.RedisConfig{URL: "redis://127.0.0.1:63799/0"},
		Reports:   config.ReportsConfig{BaseURL: "http://127.0.0.1:1", Dir: "reports"},
		Cache:     config.CacheConfig{ResetHour: 14, ResetMinute: 11, Timezone: "UTC"},
		Ingestion: config.IngestionConfig{QueueSize: 2},
	}
}

// withConfig swaps the global config for the duration of the test.
func withConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

// withMiniredis points redisOpener at an in-memory server.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	old := redisOpener
	redisOpener = func(_ context.Context, cfg config.Config) (*cache.RedisCache, error) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return cache.NewRedisCacheFromClient(client, CacheBoundary(cfg)), nil
	}
	t.Cleanup(func() { redisOpener = old })
	return mr
}

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	old := postgresOpener
	postgresOpener = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() {
		postgresOpener = old
		_ = db.Close()
	})
	return mock
}

// TestInitializeApp_DBFailure ensures InitializeApp returns error when DB cannot connect.
func TestInitializeApp_DBFailure(t *testing.T) {
	withConfig(t, testConfig())

	r, cleanup, err := InitializeApp()
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with invalid DB config")
	}
}

func TestInitializeApp_RedisFailure(t *testing.T) {
	withConfig(t, testConfig())
	mock := withMockDB(t)
	mock.ExpectClose()

	old := redisOpener
	redisOpener = func(context.Context, config.Config) (*cache.RedisCache, error) {
		return nil, errors.New("redis down")
	}
	t.Cleanup(func() { redisOpener = old })

	_, _, err := InitializeApp()
	if err == nil {
		t.Fatalf("expected redis error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db should be closed on failure: %v", err)
	}
}

func TestInitializeApp_MigrationFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Migrations.Auto = true
	withConfig(t, cfg)
	withMockDB(t)

	old := migrator
	called := false
	migrator = func(*sql.DB) error {
		called = true
		return errors.New("bad migration")
	}
	t.Cleanup(func() { migrator = old })

	_, _, err := InitializeApp()
	if err == nil || !called {
		t.Fatalf("expected migration error, called=%v err=%v", called, err)
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	withConfig(t, testConfig())
	withMockDB(t)
	mr := withMiniredis(t)

	router, cleanup, err := InitializeApp()
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err=%v", err)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fetch_data/?n=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("fetch_data status=%d", w.Code)
	}

	mr.Close()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with redis down status=%d", w.Code)
	}

	cleanup()
}

func TestCacheBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Timezone = "Europe/Moscow"
	b := CacheBoundary(cfg)
	if b.Hour != 14 || b.Minute != 11 || b.Location == nil {
		t.Fatalf("unexpected boundary %+v", b)
	}
}

func TestNewIngestor(t *testing.T) {
	if NewIngestor(testConfig(), nil) == nil {
		t.Fatalf("expected ingestor")
	}
}
