package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/model"
	"github.com/truemediaorg/mediaresolver/responder"
)

const maxRequestBytes = 64 << 10

type MediaResolver interface {
	Resolve(ctx context.Context, rawURL string) model.Outcome
}

type downloadRequest struct {
	URL string `json:"url"`
}

type API struct {
	Server   http.Server
	resolver MediaResolver
	db       Pinger
}

// NewAPI builds the HTTP surface. db is optional and only feeds /healthz.
func NewAPI(port int, resolver MediaResolver, db Pinger) *API {
	api := &API{resolver: resolver, db: db}
	api.Server = http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteMethodNotAllowed(w)
	})

	r.Get("/", handleStatus)
	r.Method(http.MethodGet, "/healthz", handleHealthcheck(a.db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/api/download", a.handleDownload)
	return r
}

func (a *API) handleDownload(w http.ResponseWriter, r *http.Request) {
	var body downloadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		log.WithField("requestId", middleware.GetReqID(r.Context())).Debugf("unreadable download request: %v", err)
		responder.WriteURLRequired(w)
		return
	}
	rawURL := strings.TrimSpace(body.URL)
	if rawURL == "" {
		responder.WriteURLRequired(w)
		return
	}

	log.WithField("requestId", middleware.GetReqID(r.Context())).WithField("url", rawURL).Info("resolving media")
	responder.WriteOutcome(w, a.resolver.Resolve(r.Context(), rawURL))
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	responder.WriteJSON(w, http.StatusOK, responder.StatusResponse{Message: "API Server Running", Status: "OK"})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithField("requestId", middleware.GetReqID(r.Context())).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("status", ww.Status()).
			WithField("duration", time.Since(start)).
			Debug("handled request")
	})
}
