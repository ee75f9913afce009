package http

import (
	"LinkGate-Backend/internal/analytics"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/ratelimit"
	"LinkGate-Backend/internal/repository"
	"LinkGate-Backend/internal/service"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// Recorder queues clicks and reports its counters.
type Recorder interface {
	ClickRecorder
	StatsSource
}

// Dependencies are the collaborators the HTTP layer drives.
type Dependencies struct {
	Storage         repository.Storage
	Links           *service.LinkService
	Domains         *service.DomainService
	Aggregator      *analytics.Aggregator
	Recorder        Recorder
	CreateLimiter   *ratelimit.Limiter
	RedirectLimiter *ratelimit.Limiter
	Clock           domain.Clock
}

// Options are transport settings.
type Options struct {
	BaseURL        string
	GateURL        string
	SecureCookies  bool
	AllowedOrigins []string
	TrustedProxies *ProxyList
}

// Server wires handlers onto a gorilla/mux router.
type Server struct {
	linksHandler     *LinksHandler
	redirectHandler  *RedirectHandler
	domainsHandler   *DomainsHandler
	analyticsHandler *AnalyticsHandler
	healthHandler    *HealthHandler
	createLimiter    *ratelimit.Limiter
	options          Options
	log              *zap.Logger
}

func NewServer(deps Dependencies, opts Options, log *zap.Logger) *Server {
	linksHandler := NewLinksHandler(deps.Links, opts.BaseURL, opts.SecureCookies, log)

	return &Server{
		linksHandler:     linksHandler,
		redirectHandler:  NewRedirectHandler(deps.Links, deps.Recorder, deps.RedirectLimiter, opts.TrustedProxies, opts.GateURL, log),
		domainsHandler:   NewDomainsHandler(deps.Domains, log),
		analyticsHandler: NewAnalyticsHandler(deps.Aggregator, linksHandler, deps.Clock, log),
		healthHandler:    NewHealthHandler(deps.Storage, deps.Recorder, Version, log),
		createLimiter:    deps.CreateLimiter,
		options:          opts,
		log:              log,
	}
}

// SetupRoutes builds the router. The bare /{code} route is registered last so
// that fixed paths win.
func (s *Server) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger(s.log), cors(s.options.AllowedOrigins))

	r.HandleFunc("/health", s.healthHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.healthHandler.Ready).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.healthHandler.Metrics).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.HandleFunc("/links", rateLimit(s.createLimiter, s.options.TrustedProxies, s.log, s.linksHandler.CreateLink)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/links/bulk", rateLimit(s.createLimiter, s.options.TrustedProxies, s.log, s.linksHandler.BulkCreateLinks)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/links/verify-password", s.linksHandler.VerifyPassword).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/links/{code}", s.linksHandler.GetLink).Methods(http.MethodGet)
	r.HandleFunc("/links/{code}/analytics", s.analyticsHandler.LinkAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/analytics", s.analyticsHandler.WorkspaceAnalytics).Methods(http.MethodGet)

	r.HandleFunc("/domains", s.domainsHandler.CreateDomain).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/domains", s.domainsHandler.ListDomains).Methods(http.MethodGet)
	r.HandleFunc("/domains/{id:[0-9]+}", s.domainsHandler.GetDomain).Methods(http.MethodGet)
	r.HandleFunc("/domains/{id:[0-9]+}", s.domainsHandler.DeleteDomain).Methods(http.MethodDelete, http.MethodOptions)
	r.HandleFunc("/domains/{id:[0-9]+}/verify", s.domainsHandler.VerifyDomain).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/domains/{id:[0-9]+}/reset", s.domainsHandler.ResetDomain).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/domains/{id:[0-9]+}/default", s.domainsHandler.SetDefaultDomain).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/r/{code}", s.redirectHandler.HandleRedirect).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/{code}", s.redirectHandler.HandleCustomDomainRedirect).Methods(http.MethodGet, http.MethodHead)

	return r
}
