package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/kquant/internal/export"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "스크리닝 1회 실행",
	Long: `전체 스크리닝 파이프라인을 한 번 실행하고 스냅샷을 발행합니다.

이 명령어는:
- 최신 수집분으로 종목별 재무/밸류에이션/기술 지표 계산
- 유니버스 백분위 정규화 후 6개 전략 평가
- dashboard 스냅샷 교체 (current -> previous)
- 전략별 CSV 내보내기 (--export)

Example:
  go run ./cmd/quant screen
  go run ./cmd/quant screen --export`,
	RunE: runScreen,
}

var screenExport bool

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().BoolVar(&screenExport, "export", false, "전략별 CSV 파일 생성")
}

func runScreen(cmd *cobra.Command, args []string) error {
	fmt.Println("=== kquant Screening ===")

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	snap, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	diff, err := materializer.Publish(ctx, snap)
	if err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	fmt.Printf("\n✅ %d종목 스크리닝 완료 (%s)\n", len(snap.Rows), snap.Date.Format("2006-01-02"))
	for _, d := range diff.Strategies {
		fmt.Printf("  %-16s 편입 %d / 제외 %d\n", d.Strategy, len(d.Added), len(d.Removed))
	}

	if screenExport {
		exporter := export.NewExporter(cfg.Screening.ExportDir, log)
		paths, err := exporter.ExportAll(snap)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("\nCSV %d개 저장: %s\n", len(paths), cfg.Screening.ExportDir)
	}

	return nil
}
