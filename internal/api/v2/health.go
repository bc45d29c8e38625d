package api

import (
	"net/http"

	"github.com/hashicorp-forge/notion-mirror/internal/server"
	"github.com/hashicorp-forge/notion-mirror/pkg/database"
)

// HealthResponse is the response body of the health endpoint.
type HealthResponse struct {
	Status   string              `json:"status"`
	Database *database.PoolStats `json:"database,omitempty"`
}

// HealthHandler reports whether the cache database is reachable.
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET", "HEAD":
			sqlDB, err := srv.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(r.Context())
			}
			if err != nil {
				srv.Logger.Error("health check failed", "error", err)
				http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
				return
			}

			stats, err := database.GetPoolStats(srv.DB)
			if err != nil {
				srv.Logger.Warn("error getting pool stats", "error", err)
			}
			respondJSON(srv, w, HealthResponse{Status: "ok", Database: stats},
				"error encoding health response")

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
	})
}
