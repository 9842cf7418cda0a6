package service

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/responder"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency the healthcheck confirms is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// handleHealthcheck reports 200 while the process is up. With a database
// configured it also pings it and reports 503 when that fails.
func handleHealthcheck(db Pinger) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.Debug("received healthcheck request")
			if db == nil {
				responder.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warnf("healthcheck database ping failed: %v", err)
				responder.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
				return
			}
			responder.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
		},
	)
}
