package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/kquant/internal/export"
	"github.com/wonny/kquant/internal/scheduler"
	"github.com/wonny/kquant/internal/scheduler/jobs"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 시작",
	Long: `일별 스크리닝 스케줄러를 시작합니다.

등록 작업:
  daily_screening - 평일 장 마감 후 스크리닝 + 스냅샷 발행 (기본: 16:30)

Example:
  go run ./cmd/quant scheduler
  SCREEN_CRON="0 0 17 * * 1-5" go run ./cmd/quant scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== kquant Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	engine, materializer, err := buildEngine(cfg, db, log)
	if err != nil {
		return err
	}

	exporter := export.NewExporter(cfg.Screening.ExportDir, log)

	sched := scheduler.New(log)
	job := jobs.NewScreeningJob(engine, materializer, exporter, cfg.Screening.CronSpec, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register job: %w", err)
	}

	sched.Start()

	fmt.Printf("\n✅ Scheduler running (%s: %s)\n", job.Name(), cfg.Screening.CronSpec)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	log.Info("Scheduler stopped")
	return nil
}
