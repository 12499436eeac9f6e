package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/internal/stage"
	"github.com/storefront/backend/internal/validation"
	"github.com/storefront/backend/pkg/auth"
)

// maxJSONBody caps request bodies that are decoded as JSON.
const maxJSONBody = 1 << 20

// Pinger is satisfied by the database pool and the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	db          Pinger
	redis       Pinger
	frontendURL string
}

// New returns the health/CORS handler. redis may be nil.
func New(db Pinger, redis Pinger, frontendURL string) *Handler {
	return &Handler{db: db, redis: redis, frontendURL: frontendURL}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-Match, "+auth.DevRoleHeader)
		w.Header().Set("Access-Control-Expose-Headers", "ETag")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error     string            `json:"error"`
	Retryable bool              `json:"retryable"`
	Message   string            `json:"message,omitempty"`
	Fields    validation.Errors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: code, Retryable: retryable})
}

// writeServiceError maps service, stage and estimate errors onto HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.Errors
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", false)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", false)
	case errors.Is(err, stage.ErrProjectCancelled):
		writeError(w, http.StatusConflict, "project_cancelled", false)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "version_conflict", false)
	case errors.Is(err, estimate.ErrUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "estimate_unavailable", false)
	case errors.Is(err, service.ErrNoPMAvailable):
		writeError(w, http.StatusServiceUnavailable, "no_pm_available", true)
	case errors.Is(err, stage.ErrOnboardingIncomplete):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "onboarding_incomplete", Message: err.Error()})
	case errors.Is(err, stage.ErrInvalidStage):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_stage", Message: err.Error()})
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Fields: fields})
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
	case service.IsRetryable(err):
		slog.Warn("store unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", true)
	default:
		slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", false)
	}
}

// actorFrom returns the authenticated actor, writing 401 when there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", false)
		return model.Actor{}, false
	}
	role := model.Role(auth.RoleFromContext(r.Context()))
	if !role.Valid() {
		writeError(w, http.StatusForbidden, "forbidden", false)
		return model.Actor{}, false
	}
	return model.Actor{UserID: userID, Role: role}, true
}

// decodeJSON decodes a size-limited body, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", false)
		return false
	}
	return true
}

// expectedVersion parses If-Match. Absent means "whatever is current".
func expectedVersion(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if v == "" || v == "*" {
		return 0, true
	}
	v = strings.Trim(strings.TrimPrefix(v, "W/"), `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_if_match", false)
		return 0, false
	}
	return n, true
}

// writeProject writes p with its version as the ETag.
func writeProject(w http.ResponseWriter, status int, p *model.Project) {
	w.Header().Set("ETag", `"`+strconv.FormatInt(p.Version, 10)+`"`)
	writeJSON(w, status, p)
}
