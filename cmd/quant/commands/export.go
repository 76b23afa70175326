package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/internal/dataset"
	"github.com/wonny/kquant/internal/export"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "스크리닝 결과 내보내기",
	Long: `현재 스냅샷의 전략별 결과를 터미널 테이블 또는 CSV로 내보냅니다.

Example:
  go run ./cmd/quant export                      # 전체 전략 CSV
  go run ./cmd/quant export --strategy quality   # 터미널 테이블 출력`,
	RunE: runExport,
}

var exportStrategy string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportStrategy, "strategy", "", "특정 전략만 테이블로 출력")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := dataset.NewSnapshotStore(db.Pool, log)
	snap, err := store.Current(ctx)
	if err != nil {
		return fmt.Errorf("load current snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("발행된 스냅샷이 없습니다 (screen을 먼저 실행하세요)")
	}

	exporter := export.NewExporter(cfg.Screening.ExportDir, log)

	if exportStrategy != "" {
		if !validStrategyName(exportStrategy) {
			return fmt.Errorf("unknown strategy: %s", exportStrategy)
		}
		fmt.Println(exporter.RenderTable(snap, exportStrategy))
		return nil
	}

	paths, err := exporter.ExportAll(snap)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("✅ CSV %d개 저장\n", len(paths))
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func validStrategyName(name string) bool {
	for _, s := range contracts.StrategyNames {
		if s == name {
			return true
		}
	}
	return false
}
