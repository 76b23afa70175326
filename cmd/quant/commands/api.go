package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kquant/internal/api"
	"github.com/wonny/kquant/internal/api/handlers"
	"github.com/wonny/kquant/internal/dataset"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
	"github.com/wonny/kquant/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `대시보드 REST API 서버를 시작합니다.

Endpoints:
  GET /health                  - Health check
  GET /api/status              - 스냅샷/DB 상태
  GET /api/dashboard           - 스크리닝 결과 목록
  GET /api/stocks/{code}       - 종목 상세
  GET /api/strategies          - 전략 목록
  GET /api/strategies/{name}   - 전략 편입 종목
  GET /api/diff                - 직전 스냅샷 대비 변동
  GET /api/export/{name}       - 전략 편입 종목 CSV 다운로드

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== kquant API Server ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	store := dataset.NewSnapshotStore(db.Pool, log)
	cache := redis.NewCache(redisClient, "kquant")
	limiter := redis.NewRateLimiter(redisClient, "kquant")

	dashboardHandler := handlers.NewDashboardHandler(store, cache, cfg.API.CacheTTL, log)
	statusHandler := handlers.NewStatusHandler(db, store, log)

	router := api.NewRouter(dashboardHandler, statusHandler, cfg, limiter, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
