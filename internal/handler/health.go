package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks"`
}

// Health reports database and Redis reachability. Redis is required for
// chat fan-out, so its failure also marks the service unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Message: "storefront API", Checks: map[string]string{}}
	check := func(name string, p Pinger) {
		if p == nil {
			return
		}
		if err := p.Ping(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Checks[name] = err.Error()
			return
		}
		resp.Checks[name] = "ok"
	}
	check("database", h.db)
	check("redis", h.redis)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
