package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/kquant/internal/api/handlers"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/logger"
	"github.com/wonny/kquant/pkg/redis"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(dashboard *handlers.DashboardHandler, status *handlers.StatusHandler, cfg *config.Config, shared *redis.RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", status.Health).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/status", status.Status).Methods("GET")
	api.HandleFunc("/dashboard", dashboard.GetDashboard).Methods("GET")
	api.HandleFunc("/stocks/{code}", dashboard.GetStock).Methods("GET")
	api.HandleFunc("/strategies", dashboard.GetStrategies).Methods("GET")
	api.HandleFunc("/strategies/{name}", dashboard.GetStrategyMembers).Methods("GET")
	api.HandleFunc("/diff", dashboard.GetDiff).Methods("GET")
	api.HandleFunc("/export/{name}", dashboard.ExportStrategyCSV).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware())
	r.Use(rateLimitMiddleware(cfg.API.RateLimit, cfg.API.RateBurst, shared, log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows the dashboard frontend to call from another origin
func corsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies a per-client token bucket, backed by the
// Redis sliding window when enabled so the limit holds across instances.
// IP별 리미터는 프로세스 수명 동안 유지됨.
func rateLimitMiddleware(rps float64, burst int, shared *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		lim, ok := limiters[ip]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = lim
		}
		return lim
	}

	reject := func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Rate limit exceeded",
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiterFor(ip).Allow() {
				reject(w)
				return
			}

			// CSV 다운로드는 더 좁은 윈도우 적용
			sharedCfg := redis.APIRateLimit
			if strings.HasPrefix(r.URL.Path, "/api/export/") {
				sharedCfg = redis.ExportRateLimit
			}
			sharedCfg.Key = sharedCfg.Key + ":" + ip
			allowed, _, err := shared.Allow(r.Context(), sharedCfg)
			if err != nil {
				// Redis 장애로 요청을 막지는 않음
				log.WithError(err).Warn("Shared rate limit check failed")
			} else if !allowed {
				reject(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
