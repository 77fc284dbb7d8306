package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/trackwise-backend/api/responses"
	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const healthPingTimeout = 2 * time.Second

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Database  string `json:"database"`
}

// Health always answers OK; the database field carries the ping outcome.
func Health(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{
			Status:    "OK",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   cfg.App.Version,
			Database:  "ok",
		}

		if dbP == nil {
			body.Database = "unconfigured"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := dbP.Ping(ctx); err != nil {
				body.Database = "error"
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "health database ping failed")
				}
			}
		}

		responses.WriteSuccess(w, body)
	}
}
