package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gatehouse-id/gatehouse/pkg/challenge"
	"github.com/gatehouse-id/gatehouse/pkg/httputil"
	"github.com/gatehouse-id/gatehouse/pkg/identity"
	"github.com/gatehouse-id/gatehouse/pkg/onboarding"
)

// Dependencies carries everything the server needs wired in
type Dependencies struct {
	Client        identity.Client
	Orchestrator  *challenge.Orchestrator
	Passwords     *challenge.StateMachine
	Onboarding    *onboarding.Workflow
	Translator    *Translator
	PublicBaseURL string
	Logger        *logrus.Logger
}

// Server is the orchestration HTTP surface
type Server struct {
	handler http.Handler
	log     *logrus.Logger
}

// NewServer assembles the router, middleware, and all handlers
func NewServer(deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logrus.New()
	}

	router := mux.NewRouter()
	router.HandleFunc("/", handleIndex).Methods("GET")

	NewAuthHandlers(deps.Orchestrator, deps.Passwords, deps.Translator, deps.PublicBaseURL, log).RegisterRoutes(router)
	NewOrgHandlers(deps.Client, deps.Translator, log).RegisterRoutes(router)
	NewUserHandlers(deps.Client, deps.Translator, log).RegisterRoutes(router)
	NewAppHandlers(deps.Client, deps.Translator, log).RegisterRoutes(router)
	NewOnboardingHandlers(deps.Client, deps.Onboarding, deps.Translator, log).RegisterRoutes(router)

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(log),
		httputil.RecoveryMiddleware(log),
	)(router)

	return &Server{handler: handler, log: log}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleIndex answers a minimal landing page for the headless surface
func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><head><title>Gatehouse</title></head><body><div>Gatehouse identity front</div></body></html>"))
}

// NewHealthMux builds the separate health/metrics listener's handler.
// Readiness only reports whether a service credential is held; the
// process itself stays up either way (degraded mode).
func NewHealthMux(credentials interface{ Token() (string, error) }, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := credentials.Token(); err != nil {
			httputil.WriteServiceUnavailable(w, "service credential not yet acquired")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	return mux
}
