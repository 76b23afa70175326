package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func TestWeightedScore(t *testing.T) {
	row := &contracts.DashboardRow{
		Percentiles: map[string]contracts.Value{
			MetricROE: contracts.Some(80),
			MetricPER: contracts.Some(60),
			MetricPEG: contracts.None(),
		},
	}

	score := weightedScore([]WeightTerm{
		{Metric: MetricROE, Weight: 2.0},
		{Metric: MetricPER, Weight: 1.0},
		{Metric: MetricPEG, Weight: 3.0}, // 미정의 -> 기여 없음
	}, row)

	require.True(t, score.Valid)
	assert.InDelta(t, 80*2.0+60*1.0, score.Float, 1e-9)
}

func TestWeightedScoreInvert(t *testing.T) {
	row := &contracts.DashboardRow{
		Percentiles: map[string]contracts.Value{
			MetricRSI14: contracts.Some(30),
		},
	}

	score := weightedScore([]WeightTerm{
		{Metric: MetricRSI14, Weight: 1.0, Invert: true},
	}, row)

	require.True(t, score.Valid)
	assert.InDelta(t, 70.0, score.Float, 1e-9)
}

func TestWeightedScoreAllUndefined(t *testing.T) {
	row := &contracts.DashboardRow{
		Percentiles: map[string]contracts.Value{
			MetricROE: contracts.None(),
		},
	}

	score := weightedScore([]WeightTerm{
		{Metric: MetricROE, Weight: 2.0},
		{Metric: MetricPER, Weight: 1.0},
	}, row)

	assert.False(t, score.Valid)
}

func TestEvaluateFailedConditions(t *testing.T) {
	strategy := Strategy{
		Name: "test",
		All: []Condition{
			{Name: "always_pass", Test: func(*contracts.DashboardRow) bool { return true }},
			{Name: "always_fail", Test: func(*contracts.DashboardRow) bool { return false }},
		},
		Weights: []WeightTerm{{Metric: MetricROE, Weight: 1.0}},
	}

	ev := NewEvaluator([]Strategy{strategy}, CompositeWeights(), testLogger())
	rows := map[string]*contracts.DashboardRow{
		"A": {Percentiles: map[string]contracts.Value{MetricROE: contracts.Some(50)}},
	}

	require.NoError(t, ev.Evaluate(context.Background(), rows))

	result := rows["A"].Strategies["test"]
	assert.False(t, result.Member)
	assert.Equal(t, []string{"always_fail"}, result.Failed)
	assert.False(t, result.Score.Valid)
}

func TestEvaluateAnySemantics(t *testing.T) {
	strategy := Strategy{
		Name: "test",
		Any: []Condition{
			{Name: "left", Test: func(*contracts.DashboardRow) bool { return false }},
			{Name: "right", Test: func(*contracts.DashboardRow) bool { return false }},
		},
		Weights: []WeightTerm{{Metric: MetricROE, Weight: 1.0}},
	}

	ev := NewEvaluator([]Strategy{strategy}, CompositeWeights(), testLogger())
	rows := map[string]*contracts.DashboardRow{
		"A": {Percentiles: map[string]contracts.Value{MetricROE: contracts.Some(50)}},
	}

	require.NoError(t, ev.Evaluate(context.Background(), rows))

	// Any 그룹 전체 실패는 하나의 엔트리로 기록
	result := rows["A"].Strategies["test"]
	assert.False(t, result.Member)
	assert.Equal(t, []string{"left|right"}, result.Failed)
}

func TestEvaluateMemberScore(t *testing.T) {
	strategy := Strategy{
		Name: "test",
		All: []Condition{
			{Name: "always_pass", Test: func(*contracts.DashboardRow) bool { return true }},
		},
		Weights: []WeightTerm{
			{Metric: MetricROE, Weight: 2.0},
			{Metric: MetricPER, Weight: 1.5},
		},
	}

	ev := NewEvaluator([]Strategy{strategy}, CompositeWeights(), testLogger())
	rows := map[string]*contracts.DashboardRow{
		"A": {Percentiles: map[string]contracts.Value{
			MetricROE: contracts.Some(90),
			MetricPER: contracts.Some(40),
		}},
	}

	require.NoError(t, ev.Evaluate(context.Background(), rows))

	result := rows["A"].Strategies["test"]
	assert.True(t, result.Member)
	assert.Empty(t, result.Failed)
	assert.InDelta(t, 90*2.0+40*1.5, result.Score.Float, 1e-9)
}

func TestEvaluateCompositeForNonMembers(t *testing.T) {
	// 전략 탈락 종목도 종합점수는 계산됨
	strategy := Strategy{
		Name: "test",
		All: []Condition{
			{Name: "always_fail", Test: func(*contracts.DashboardRow) bool { return false }},
		},
	}

	ev := NewEvaluator([]Strategy{strategy}, []WeightTerm{{Metric: MetricROE, Weight: 2.0}}, testLogger())
	rows := map[string]*contracts.DashboardRow{
		"A": {Percentiles: map[string]contracts.Value{MetricROE: contracts.Some(75)}},
	}

	require.NoError(t, ev.Evaluate(context.Background(), rows))

	assert.False(t, rows["A"].Strategies["test"].Member)
	assert.InDelta(t, 150.0, rows["A"].CompositeScore.Float, 1e-9)
}

func TestTurnaroundStrategyAdmission(t *testing.T) {
	ev := NewEvaluator(DefaultStrategies(), CompositeWeights(), testLogger())

	member := &contracts.DashboardRow{
		Quote:       contracts.Quote{MarketCap: 40_000_000_000},
		Fundamental: contracts.FundamentalFeatures{TTMNetIncome: contracts.Some(10), Turnaround: true},
		Percentiles: map[string]contracts.Value{MetricMarginDelta: contracts.Some(80)},
	}
	noTrigger := &contracts.DashboardRow{
		Quote:       contracts.Quote{MarketCap: 40_000_000_000},
		Fundamental: contracts.FundamentalFeatures{TTMNetIncome: contracts.Some(10)},
		Percentiles: map[string]contracts.Value{},
	}

	rows := map[string]*contracts.DashboardRow{"A": member, "B": noTrigger}
	require.NoError(t, ev.Evaluate(context.Background(), rows))

	assert.True(t, member.Strategies[contracts.StrategyTurnaround].Member)

	result := noTrigger.Strategies[contracts.StrategyTurnaround]
	assert.False(t, result.Member)
	assert.Contains(t, result.Failed, "turnaround|margin_jump")
}

func TestCashcowRequiresDefinedDebtRatio(t *testing.T) {
	ev := NewEvaluator(DefaultStrategies(), CompositeWeights(), testLogger())

	row := &contracts.DashboardRow{
		Quote: contracts.Quote{MarketCap: 100_000_000_000},
		Fundamental: contracts.FundamentalFeatures{
			TTMNetIncome:        contracts.Some(100),
			OperatingMargin:     contracts.Some(20),
			RevenueGrowthStreak: 2,
			FScore:              7,
		},
		Valuation: contracts.ValuationFeatures{
			ROE:             contracts.Some(15),
			DebtRatio:       contracts.None(), // 부채비율 미확인
			EarningsQuality: true,
		},
		Percentiles: map[string]contracts.Value{},
	}

	rows := map[string]*contracts.DashboardRow{"A": row}
	require.NoError(t, ev.Evaluate(context.Background(), rows))

	result := row.Strategies[contracts.StrategyCashcow]
	assert.False(t, result.Member)
	assert.Contains(t, result.Failed, "debt_ratio_below_100")
}
