// Package adminhttp exposes the pipeline's operational HTTP surface:
// health, Prometheus metrics, and a checkpoint inspector. Grounded on the
// teacher's net/http-based metrics server (cmd/worker/main.go
// startMetricsServer), rebuilt on go-chi/chi since the surface grew beyond a
// single handler.
package adminhttp

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"soccerpipe/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the admin mux. checkpointDir is read-only here; the
// scraper engine owns writing to it.
func NewRouter(db *repository.Database, checkpointDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", healthHandler(db))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/checkpoints/{adapter}", checkpointHandler(checkpointDir))
	r.Get("/debug/pool", poolStatsHandler(db))

	return r
}

func healthHandler(db *repository.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func poolStatsHandler(db *repository.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(db.PoolStats())
	}
}

// checkpointHandler serves the raw JSON checkpoint file for one adapter, for
// quick operator inspection during a stuck scrape run.
func checkpointHandler(checkpointDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adapterID := chi.URLParam(r, "adapter")
		path := filepath.Join(checkpointDir, "."+adapterID+"_checkpoint.json")

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			http.Error(w, "no checkpoint for adapter", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}
