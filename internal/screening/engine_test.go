package screening

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/internal/features"
	"github.com/wonny/kquant/internal/scoring"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

type stubRepo struct {
	batch *contracts.Batch
	err   error
}

func (r *stubRepo) LoadBatch(ctx context.Context) (*contracts.Batch, error) {
	return r.batch, r.err
}

func ordinarySecurity(code string, revenue float64) *contracts.SecurityData {
	return &contracts.SecurityData{
		Security: contracts.Security{Code: code, Market: contracts.MarketKOSPI, Type: contracts.TypeOrdinary},
		Quote:    contracts.Quote{Code: code, Close: 50000, MarketCap: 60_000_000_000, ListedShares: 1_200_000},
		Statements: []contracts.StatementItem{
			{Account: "매출액", Period: "2023-12-31", Freq: contracts.FreqAnnual, Value: revenue * 0.9},
			{Account: "매출액", Period: "2024-12-31", Freq: contracts.FreqAnnual, Value: revenue},
			{Account: "당기순이익", Period: "2024-12-31", Freq: contracts.FreqAnnual, Value: revenue * 0.1},
			{Account: "자본총계", Period: "2024-12-31", Freq: contracts.FreqAnnual, Value: revenue * 0.8},
		},
	}
}

func testBatch() *contracts.Batch {
	preferred := ordinarySecurity("000105", 1e14)
	preferred.Security.Type = contracts.TypePreferred

	return &contracts.Batch{
		Date: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		Securities: map[string]*contracts.SecurityData{
			features.DefaultReferenceCode: ordinarySecurity(features.DefaultReferenceCode, 3e14),
			"000100":                      ordinarySecurity("000100", 1e12),
			"000105":                      preferred,
		},
	}
}

func testEngine(repo contracts.DataRepository, workers int) *Engine {
	log := testLogger()
	strategies, composite := scoring.ApplyFileConfig(nil)
	return NewEngine(EngineConfig{
		Repo:       repo,
		Normalizer: features.NewUnitNormalizer("", log),
		Aggregator: features.NewAggregator(log),
		Valuation:  features.NewValuationCalculator(log),
		Technical:  features.NewTechnicalCalculator(log),
		Scorer:     scoring.NewScorer(log),
		Evaluator:  scoring.NewEvaluator(strategies, composite, log),
		Workers:    workers,
	}, log)
}

func TestEngineRun(t *testing.T) {
	engine := testEngine(&stubRepo{batch: testBatch()}, 4)

	snap, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), snap.Date)

	// 보통주만 대상, 우선주는 제외
	require.Len(t, snap.Rows, 2)
	assert.Contains(t, snap.Rows, "000100")
	assert.NotContains(t, snap.Rows, "000105")

	for code, row := range snap.Rows {
		assert.NotEmpty(t, row.Percentiles, "percentiles missing for %s", code)
		assert.Len(t, row.Strategies, len(contracts.StrategyNames), "strategies missing for %s", code)
	}

	// 매출 단위가 원화 그대로면 PER 계산 가능
	row := snap.Rows["000100"]
	assert.True(t, row.Valuation.PER.Valid)
	assert.True(t, row.CompositeScore.Valid)
}

func TestEngineRunMissingReference(t *testing.T) {
	batch := testBatch()
	delete(batch.Securities, features.DefaultReferenceCode)

	engine := testEngine(&stubRepo{batch: batch}, 4)

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.True(t, contracts.IsDataUnavailable(err))
}

func TestEngineRunRepoError(t *testing.T) {
	engine := testEngine(&stubRepo{err: assert.AnError}, 1)

	_, err := engine.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEngineRunDeterministic(t *testing.T) {
	engine := testEngine(&stubRepo{batch: testBatch()}, 8)

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	second, err := engine.Run(context.Background())
	require.NoError(t, err)

	// 워커 수와 무관하게 같은 입력은 같은 결과
	require.Len(t, second.Rows, len(first.Rows))
	for code, row := range first.Rows {
		other := second.Rows[code]
		require.NotNil(t, other)
		assert.Equal(t, row.CompositeScore, other.CompositeScore)
		assert.Equal(t, row.Percentiles, other.Percentiles)
	}
}
