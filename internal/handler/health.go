package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/db"
)

type HealthHandler struct {
	database *sqlx.DB
}

func NewHealthHandler(database *sqlx.DB) *HealthHandler {
	return &HealthHandler{database: database}
}

// Health reports 503 when the database does not answer a ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, h.database); err != nil {
		slog.Error("health check failed", "error", err)
		apperr.WriteJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable", "database": "down"})
		return
	}

	apperr.WriteJSON(w, http.StatusOK, envelope{"status": "ok", "database": "up"})
}
