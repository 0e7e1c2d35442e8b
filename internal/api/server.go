package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eline/driftline/internal/api/handler"
	mw "github.com/eline/driftline/internal/api/middleware"
	"github.com/eline/driftline/internal/config"
	"github.com/eline/driftline/internal/core"
	"github.com/eline/driftline/internal/hubspot"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	pool        *pgxpool.Pool
	cfg         *config.Config
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config) *Server {
	client := hubspot.NewClient(hubspot.Config{
		ClientID:     cfg.HubSpotClientID,
		ClientSecret: cfg.HubSpotClientSecret,
		RedirectURI:  cfg.HubSpotRedirectURI,
		AuthURL:      cfg.HubSpotAuthURL,
		TokenURL:     cfg.HubSpotTokenURL,
		APIBaseURL:   cfg.HubSpotAPIBaseURL,
		Scopes:       cfg.HubSpotScopes,
	})
	services := core.NewServices(pool, client, cfg.JWTSecret, cfg.JWTIssuer, logger)
	auditLogger := mw.NewAuditLogger(pool, logger)

	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		pool:        pool,
		cfg:         cfg,
		auditLogger: auditLogger,
	}

	s.setupMiddleware()
	s.setupRoutes(client)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins, s.cfg.DevMode))
}

func (s *Server) setupRoutes(client core.ProviderClient) {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	// Authentication
	auth := handler.NewAuth(s.services.Auth)
	s.router.Post("/auth/signup", auth.Signup)
	s.router.Post("/auth/login", auth.Login)

	// HubSpot connect flow. Reached by top-level browser navigations, so
	// it resolves identity itself instead of sitting behind mw.Auth.
	connect := handler.NewConnect(s.services.Auth, s.services.Connect, s.cfg.SiteBaseURL)
	s.router.Get("/connect/hubspot", connect.Flow)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.Auth))
		r.Use(s.auditLogger.Middleware)

		// Profile
		me := handler.NewMe(s.services.User)
		r.Get("/me", me.Get)
		r.Patch("/me", me.Update)

		// HubSpot integration
		hs := handler.NewHubSpot(s.services.Token, s.services.Manager, client)
		r.Get("/hubspot/status", hs.Status)
		r.Get("/hubspot/account", hs.Account)
		r.Post("/hubspot/contacts", hs.CreateContact)
		r.Delete("/hubspot/connection", hs.Disconnect)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close flushes the audit log writer. Call during shutdown after the
// HTTP server has stopped accepting requests.
func (s *Server) Close() {
	s.auditLogger.Close()
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Driftline Site API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
