package screening

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/internal/features"
	"github.com/wonny/kquant/internal/scoring"
	"github.com/wonny/kquant/pkg/logger"
)

// Engine runs the screening pipeline in three strict stages:
//
//  1. feature extraction, per security, in parallel
//  2. universe-wide score normalization, single pass
//  3. strategy evaluation, per security, in parallel
//
// 2단계는 전체 유니버스를 봐야 하므로 1단계가 전부 끝난 뒤에만 시작됨.
type Engine struct {
	repo       contracts.DataRepository
	normalizer *features.UnitNormalizer
	aggregator *features.Aggregator
	valuation  *features.ValuationCalculator
	technical  *features.TechnicalCalculator
	scorer     *scoring.Scorer
	evaluator  *scoring.Evaluator
	workers    int
	logger     *logger.Logger
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Repo       contracts.DataRepository
	Normalizer *features.UnitNormalizer
	Aggregator *features.Aggregator
	Valuation  *features.ValuationCalculator
	Technical  *features.TechnicalCalculator
	Scorer     *scoring.Scorer
	Evaluator  *scoring.Evaluator
	Workers    int
}

// NewEngine creates a screening engine.
func NewEngine(cfg EngineConfig, log *logger.Logger) *Engine {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		repo:       cfg.Repo,
		normalizer: cfg.Normalizer,
		aggregator: cfg.Aggregator,
		valuation:  cfg.Valuation,
		technical:  cfg.Technical,
		scorer:     cfg.Scorer,
		evaluator:  cfg.Evaluator,
		workers:    workers,
		logger:     log,
	}
}

// Run executes one full screening pass and returns the materialized snapshot.
// 단위 판정 실패(DataUnavailableError)는 실행 전체를 중단시킴.
func (e *Engine) Run(ctx context.Context) (*contracts.Snapshot, error) {
	start := time.Now()

	batch, err := e.repo.LoadBatch(ctx)
	if err != nil {
		return nil, err
	}

	multiplier, err := e.normalizer.Multiplier(ctx, batch)
	if err != nil {
		return nil, err
	}

	rows, err := e.extractFeatures(ctx, batch, multiplier)
	if err != nil {
		return nil, err
	}

	if err := e.scorer.Score(ctx, rows); err != nil {
		return nil, err
	}

	if err := e.evaluator.Evaluate(ctx, rows); err != nil {
		return nil, err
	}

	snap := &contracts.Snapshot{
		Date: batch.Date,
		Rows: rows,
	}

	e.logger.WithFields(map[string]interface{}{
		"date":       batch.Date.Format("2006-01-02"),
		"securities": len(rows),
		"elapsed":    time.Since(start).String(),
	}).Info("Screening run complete")

	return snap, nil
}

// extractFeatures runs stage 1 over every ordinary security.
func (e *Engine) extractFeatures(ctx context.Context, batch *contracts.Batch, multiplier float64) (map[string]*contracts.DashboardRow, error) {
	rows := make(map[string]*contracts.DashboardRow, len(batch.Securities))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for code, data := range batch.Securities {
		// 우선주/기타 증권은 스크리닝 대상이 아님
		if data.Security.Type != contracts.TypeOrdinary {
			continue
		}

		code, data := code, data
		g.Go(func() error {
			fund, err := e.aggregator.Calculate(gctx, code, data, multiplier)
			if err != nil {
				return err
			}
			val, err := e.valuation.Calculate(gctx, code, data, fund)
			if err != nil {
				return err
			}
			tech, err := e.technical.Calculate(gctx, code, data.Bars)
			if err != nil {
				return err
			}

			row := &contracts.DashboardRow{
				Security:    data.Security,
				Quote:       data.Quote,
				Fundamental: fund,
				Valuation:   val,
				Technical:   tech,
			}

			mu.Lock()
			rows[code] = row
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
