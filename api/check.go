package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/lms/api/web"
	"github.com/irsalhamdi/lms/database"
	"github.com/jmoiron/sqlx"
)

// handleReadiness reports whether the database answers within a second.
func handleReadiness(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		status := struct {
			Status string `json:"status"`
		}{"ok"}

		if err := database.StatusCheck(ctx, db); err != nil {
			status.Status = fmt.Sprintf("db not ready: %v", err)
			return web.Respond(ctx, w, status, http.StatusServiceUnavailable)
		}

		return web.Respond(ctx, w, status, http.StatusOK)
	}
}
