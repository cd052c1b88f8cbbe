package server

import (
	"context"
	"net/http"
	"time"
)

// ComponentHealth reports one dependency's state in the health response.
type ComponentHealth struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

func checkComponent(ctx context.Context, probe func(context.Context) error) ComponentHealth {
	start := time.Now()
	if err := probe(ctx); err != nil {
		return ComponentHealth{Status: "down", Message: err.Error()}
	}
	return ComponentHealth{Status: "up", LatencyMs: float64(time.Since(start).Microseconds()) / 1000}
}

// handleHealth reports overall service health plus per-component detail
// for the database and the storage backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Components: map[string]ComponentHealth{
			"database": checkComponent(ctx, s.db.PingContext),
			"storage":  checkComponent(ctx, s.storage.Ping),
		},
	}

	status := http.StatusOK
	for _, c := range resp.Components {
		if c.Status != "up" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, resp)
}
