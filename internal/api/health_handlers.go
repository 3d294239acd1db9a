package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with the number of stored books",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Books      int                        `json:"books" doc:"Number of books in the collection"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	storage := s.checkStorage()

	resp := HealthResponse{
		Status:     storage.Status,
		Components: map[string]ComponentHealth{"storage": storage},
	}
	if s.store != nil {
		resp.Books = s.store.Len()
	}

	return &HealthOutput{Body: resp}, nil
}

// checkStorage verifies the books file's directory is reachable.
func (s *Server) checkStorage() ComponentHealth {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "storage not configured",
		}
	}

	start := time.Now()
	info, err := os.Stat(filepath.Dir(s.store.Path()))
	latency := time.Since(start)

	if err != nil || !info.IsDir() {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "data directory unavailable",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
