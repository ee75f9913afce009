// Package main provides the entry point for the LinkGate link management service.
//
//	@title			LinkGate API
//	@version		1.0.0
//	@description	Short links with custom domains, password gates, scheduling and click analytics.
//
//	@contact.name	LinkGate Support
//	@contact.email	support@linkgate.io
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	APIKey
//	@in							header
//	@name						X-API-Key
//
//	@externalDocs.description	OpenAPI Specification
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main

import (
	"LinkGate-Backend/internal/analytics"
	"LinkGate-Backend/internal/auth"
	"LinkGate-Backend/internal/classifier"
	"LinkGate-Backend/internal/config"
	"LinkGate-Backend/internal/database"
	"LinkGate-Backend/internal/domain"
	"LinkGate-Backend/internal/domainverify"
	httpHandler "LinkGate-Backend/internal/handler/http"
	"LinkGate-Backend/internal/ratelimit"
	"LinkGate-Backend/internal/repository/gormstore"
	"LinkGate-Backend/internal/service"
	"LinkGate-Backend/pkg/logger"
	"LinkGate-Backend/pkg/useragent"
	"context"
	lg "log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "LinkGate-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkGate service", zap.String("env", cfg.Env), zap.String("db_driver", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	clock := domain.RealClock{}
	storage := gormstore.New(db, log)

	counters, closeCounters := counterStore(ctx, &cfg.Redis, clock, log)
	defer closeCounters()

	createLimiter := ratelimit.New(counters, "create", cfg.RateLimits.CreateLimit, cfg.RateLimits.CreateWindow, log)
	redirectLimiter := ratelimit.New(counters, "redirect", cfg.RateLimits.RedirectLimit, cfg.RateLimits.RedirectWindow, log)
	verifyLimiter := ratelimit.New(counters, "verify", cfg.RateLimits.VerifyLimit, cfg.RateLimits.VerifyWindow, log)
	passwordLimiter := ratelimit.New(counters, "password", cfg.RateLimits.PasswordLimit, cfg.RateLimits.PasswordWindow, log)

	uaParser, err := useragent.NewParser(cfg.Redirect.UARegexesPath, log)
	if err != nil {
		log.Warn("failed to load User-Agent regexes, using bundled definitions", zap.Error(err))
		uaParser, _ = useragent.NewParser("", log)
	}

	passwordService := auth.NewPasswordService()
	sessionService := auth.NewSessionService(&auth.SessionConfig{
		SecretKey: []byte(cfg.Session.Secret),
		TTL:       cfg.Session.TTL,
		Issuer:    "LinkGate-Backend",
	})
	gate := auth.NewGate(passwordService, sessionService, passwordLimiter, log)

	verifier := domainverify.New(storage, net.DefaultResolver, verifyLimiter, clock, domainverify.Config{
		CNAMETarget:  cfg.Redirect.CNAMETarget,
		MaxAttempts:  cfg.Domains.MaxAttempts,
		CheckTimeout: cfg.Domains.CheckTimeout,
	}, log)

	recorder := analytics.NewRecorder(storage, classifier.New(uaParser, cfg.Redirect.IPHashSalt), nil, clock, analytics.RecorderConfig{
		WorkerCount:     cfg.Analytics.WorkerCount,
		BufferSize:      cfg.Analytics.BufferSize,
		WriteTimeout:    cfg.Analytics.WriteTimeout,
		ShutdownTimeout: cfg.HTTPServer.ShutdownTimeout,
	}, log)
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start click recorder", zap.Error(err))
	}

	linkService := service.NewLinkService(storage, passwordService, gate, uaParser, clock, service.LinkConfig{
		CodeLength: cfg.Redirect.CodeLength,
	}, log)
	domainService := service.NewDomainService(storage, verifier, service.DomainConfig{
		MaxPerWorkspace: cfg.Domains.MaxPerWorkspace,
	}, log)

	proxies, err := httpHandler.ParseProxyList(cfg.HTTPServer.TrustedProxies)
	if err != nil {
		log.Fatal("invalid trusted proxies", zap.Error(err))
	}

	server := httpHandler.NewServer(httpHandler.Dependencies{
		Storage:         storage,
		Links:           linkService,
		Domains:         domainService,
		Aggregator:      analytics.NewAggregator(storage, cfg.Analytics.TopN, log),
		Recorder:        recorder,
		CreateLimiter:   createLimiter,
		RedirectLimiter: redirectLimiter,
		Clock:           clock,
	}, httpHandler.Options{
		BaseURL:        cfg.Redirect.BaseURL,
		GateURL:        cfg.Redirect.GateURL,
		SecureCookies:  cfg.Session.Secure,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		TrustedProxies: proxies,
	}, log)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down LinkGate service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := recorder.Stop(); err != nil {
		log.Error("click recorder did not drain cleanly", zap.Error(err))
	}
}

// counterStore returns the Redis-backed store when enabled, otherwise an in-process one.
func counterStore(ctx context.Context, cfg *config.Redis, clock domain.Clock, log *zap.Logger) (ratelimit.CounterStore, func()) {
	if !cfg.Enabled {
		store := ratelimit.NewMemoryStore(clock)
		go store.RunCleanup(ctx, time.Minute)
		log.Info("using in-process rate limit counters")
		return store, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.String("addr", cfg.Addr), zap.Error(err))
	}

	log.Info("using redis rate limit counters", zap.String("addr", cfg.Addr))
	return ratelimit.NewRedisStore(client, "linkgate"), func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close redis client", zap.Error(err))
		}
	}
}
