package handlers

import (
	"time"

	"github.com/zerodha/fastglue"
)

// Root returns the service banner
func (a *App) Root(r *fastglue.Request) error {
	return r.SendEnvelope(map[string]any{
		"message": "Vertex AI Tech Customer Support API",
		"status":  "online",
	})
}

// HealthCheck reports liveness
func (a *App) HealthCheck(r *fastglue.Request) error {
	return r.SendEnvelope(map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// ReadyCheck reports readiness by pinging the database and Redis
func (a *App) ReadyCheck(r *fastglue.Request) error {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	ready := true

	sqlDB, err := a.DB.DB()
	if err != nil || sqlDB.PingContext(r.RequestCtx) != nil {
		checks["database"] = "unreachable"
		ready = false
	}

	if a.Redis == nil {
		checks["redis"] = "not configured"
	} else if err := a.Redis.Ping(r.RequestCtx).Err(); err != nil {
		checks["redis"] = "unreachable"
		ready = false
	}

	return r.SendEnvelope(map[string]any{
		"ready":  ready,
		"checks": checks,
	})
}
