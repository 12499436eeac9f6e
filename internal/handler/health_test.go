package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func TestHealth_OK(t *testing.T) {
	h := New(&mockDB{}, &mockDB{}, "http://localhost:4321")
	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status=ok, got %q", resp.Status)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("unexpected checks: %v", resp.Checks)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := New(&mockDB{
		pingFunc: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}, &mockDB{}, "http://localhost:4321")

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected status=unhealthy, got %q", resp.Status)
	}
	if resp.Checks["database"] != "connection refused" {
		t.Errorf("expected database failure in checks, got %v", resp.Checks)
	}
}

func TestHealth_RedisDown(t *testing.T) {
	h := New(&mockDB{}, &mockDB{
		pingFunc: func(ctx context.Context) error { return errors.New("redis: nil") },
	}, "http://localhost:4321")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHealth_NilRedisSkipped(t *testing.T) {
	h := New(&mockDB{}, nil, "http://localhost:4321")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
