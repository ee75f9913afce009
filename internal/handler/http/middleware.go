package http

import (
	"LinkGate-Backend/internal/ratelimit"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// cors allows the configured origins. An entry of "*" allows any origin but
// never with credentials; listed origins get credentials.
func cors(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			case origin != "" && allowed["*"]:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, X-API-Key, X-Workspace-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Debug("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("host", r.Host),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// rateLimit rejects callers that exceed the limiter with 429.
func rateLimit(l *ratelimit.Limiter, proxies *ProxyList, log *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(l.Window().Seconds()))
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerID(r, proxies)
		if !l.Allow(r.Context(), caller) {
			log.Info("rate limited", zap.String("caller", caller), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
