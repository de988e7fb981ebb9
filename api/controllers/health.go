package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/silvergrain/studio-backend/api/responses"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

const healthProbeTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthReport struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	UptimeSeconds  int64                  `json:"uptime"`
	ResponseTimeMS int64                  `json:"response_time_ms"`
	Checks         map[string]healthCheck `json:"checks"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Silvergrain-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the datastores. Redis and storage degradation is
// reported but only a database failure flips the endpoint to 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, storageP pinger, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Silvergrain-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		start := time.Now()
		report := healthReport{
			Status:    "ready",
			Timestamp: start.UTC(),
			Checks:    map[string]healthCheck{},
		}

		probes := map[string]pinger{
			"database": dbP,
			"redis":    redisP,
			"storage":  storageP,
		}
		for name, p := range probes {
			if p == nil {
				report.Checks[name] = healthCheck{Status: "skipped"}
				continue
			}
			if err := p.Ping(ctx); err != nil {
				report.Checks[name] = healthCheck{Status: "down", Error: err.Error()}
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "check", name), "health probe failed")
				}
				if name == "database" {
					report.Status = "unhealthy"
				}
				continue
			}
			report.Checks[name] = healthCheck{Status: "up"}
		}

		report.UptimeSeconds = int64(time.Since(startedAt).Seconds())
		report.ResponseTimeMS = time.Since(start).Milliseconds()

		status := http.StatusOK
		if report.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, report)
	}
}
