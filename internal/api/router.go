package api

import (
	"net/http"
	"time"

	"github.com/meridiancredit/sentinel/internal/chread"
	"github.com/meridiancredit/sentinel/internal/engine"
	"github.com/meridiancredit/sentinel/internal/metrics"
	"github.com/meridiancredit/sentinel/internal/storage"
	"github.com/meridiancredit/sentinel/internal/store"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Store        *store.Store
	Engine       *engine.RiskEngine
	Resolver     *engine.Resolver
	Stream       storage.AnalyticsStream
	Reader       *chread.Reader // nil if ClickHouse unavailable
	Logger       *zap.Logger
	CacheTTL     time.Duration
	AuthDisabled bool
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Assessment endpoints (auth required via Bearer msk_ token)
	mux.HandleFunc("POST /v1/assess/login", deps.authMiddleware(deps.handleAssessLogin))
	mux.HandleFunc("POST /v1/assess/transaction", deps.authMiddleware(deps.handleAssessTransaction))
	mux.HandleFunc("POST /v1/auth-requirements", deps.authMiddleware(deps.handleAuthRequirements))

	// Client CRUD (no auth — dashboard auth added later)
	mux.HandleFunc("POST /api/sentinel/clients", deps.handleCreateClient)
	mux.HandleFunc("GET /api/sentinel/clients", deps.handleListClients)
	mux.HandleFunc("GET /api/sentinel/clients/{client_id}", deps.handleGetClient)
	mux.HandleFunc("PATCH /api/sentinel/clients/{client_id}", deps.handleUpdateClient)
	mux.HandleFunc("DELETE /api/sentinel/clients/{client_id}", deps.handleDeleteClient)
	mux.HandleFunc("POST /api/sentinel/clients/{client_id}/rotate-key", deps.handleRotateKey)

	// Assessment browsing & analytics (no auth)
	mux.HandleFunc("GET /api/sentinel/assessments", deps.handleListAssessments)
	mux.HandleFunc("GET /api/sentinel/analytics", deps.handleGetAnalytics)

	// Operational endpoints
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
