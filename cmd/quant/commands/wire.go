package commands

import (
	"fmt"

	"github.com/wonny/kquant/internal/dataset"
	"github.com/wonny/kquant/internal/features"
	"github.com/wonny/kquant/internal/scoring"
	"github.com/wonny/kquant/internal/screening"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/database"
	"github.com/wonny/kquant/pkg/logger"
)

// buildEngine assembles the full screening pipeline from config.
// 모든 커맨드가 같은 조립 경로를 쓰도록 여기로 모음.
func buildEngine(cfg *config.Config, db *database.DB, log *logger.Logger) (*screening.Engine, *screening.Materializer, error) {
	strategies, composite, err := loadStrategies(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := screening.NewEngine(screening.EngineConfig{
		Repo:       dataset.NewRepository(db.Pool, log),
		Normalizer: features.NewUnitNormalizer(cfg.Screening.ReferenceCode, log),
		Aggregator: features.NewAggregator(log),
		Valuation:  features.NewValuationCalculator(log),
		Technical:  features.NewTechnicalCalculator(log),
		Scorer:     scoring.NewScorer(log),
		Evaluator:  scoring.NewEvaluator(strategies, composite, log),
		Workers:    cfg.Screening.Workers,
	}, log)

	store := dataset.NewSnapshotStore(db.Pool, log)
	return engine, screening.NewMaterializer(store, log), nil
}

// loadStrategies resolves the strategy set: YAML overrides when configured,
// otherwise the built-in defaults.
func loadStrategies(cfg *config.Config) ([]scoring.Strategy, []scoring.WeightTerm, error) {
	path := cfg.Screening.StrategyConfigPath
	if path == "" {
		strategies, composite := scoring.ApplyFileConfig(nil)
		return strategies, composite, nil
	}

	fileCfg, _, err := scoring.LoadFileConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load strategy config %s: %w", path, err)
	}
	strategies, composite := scoring.ApplyFileConfig(fileCfg)
	return strategies, composite, nil
}
