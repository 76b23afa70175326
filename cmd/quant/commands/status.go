package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/internal/dataset"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "시스템 상태 확인",
	Long: `DB 연결 상태와 최신 스냅샷 정보를 확인합니다.

Example:
  go run ./cmd/quant status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== kquant Status ===")

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("\n❌ Database: %s\n", health.Error)
		return fmt.Errorf("database health check: %w", err)
	}
	fmt.Printf("\n✅ Database: healthy (%s, %d/%d conns)\n",
		health.ResponseTime.Round(time.Millisecond),
		health.Stats.TotalConns, health.Stats.MaxConns)

	store := dataset.NewSnapshotStore(db.Pool, log)

	curr, err := store.Current(ctx)
	if err != nil {
		return fmt.Errorf("load current snapshot: %w", err)
	}
	if curr == nil {
		fmt.Println("⚠️  Snapshot: 없음 (screen을 먼저 실행하세요)")
		return nil
	}

	fmt.Printf("✅ Snapshot: %s (%d종목)\n", curr.Date.Format("2006-01-02"), len(curr.Rows))
	for _, name := range contracts.StrategyNames {
		fmt.Printf("  %-16s %d종목\n", name, len(curr.Members(name)))
	}

	prev, err := store.Previous(ctx)
	if err != nil {
		return fmt.Errorf("load previous snapshot: %w", err)
	}
	if prev != nil {
		fmt.Printf("   (previous: %s, %d종목)\n", prev.Date.Format("2006-01-02"), len(prev.Rows))
	}

	return nil
}
