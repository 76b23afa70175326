package scoring

import (
	"github.com/wonny/kquant/internal/contracts"
)

// CompositeWeights is the universe-wide 종합점수 weighting, applied to every
// security without admission conditions.
func CompositeWeights() []WeightTerm {
	return []WeightTerm{
		{Metric: MetricPER, Weight: 1.5},
		{Metric: MetricPBR, Weight: 1.0},
		{Metric: MetricROE, Weight: 2.0},
		{Metric: MetricRevenueCAGR, Weight: 2.0},
		{Metric: MetricOperatingIncomeCAGR, Weight: 2.0},
		{Metric: MetricNetIncomeCAGR, Weight: 1.0},
		// 연속성장 3개 지표의 평균 = 각 1/3 가중
		{Metric: MetricRevenueStreak, Weight: 1.0 / 3},
		{Metric: MetricOperatingIncomeStreak, Weight: 1.0 / 3},
		{Metric: MetricNetIncomeStreak, Weight: 1.0 / 3},
		{Metric: MetricMarginDelta, Weight: 1.0},
		{Metric: MetricDividendYield, Weight: 0.3},
		{Metric: MetricDividendStreak, Weight: 0.3},
		{Metric: MetricSRIMDeviation, Weight: 1.0},
		{Metric: MetricFScore, Weight: 2.0},
		{Metric: MetricFCFYield, Weight: 1.5},
	}
}

// DefaultStrategies returns the six built-in screens.
// ⭐ SSOT: 전략 조건/가중치의 기본값은 여기서만
func DefaultStrategies() []Strategy {
	return []Strategy{
		qualityStrategy(),
		momentumStrategy(),
		garpStrategy(),
		cashcowStrategy(),
		turnaroundStrategy(),
		dividendGrowthStrategy(),
	}
}

// ① 우량주/저평가: 흑자 + 꾸준한 성장 + 합리적 가격
func qualityStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyQuality,
		All: []Condition{
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "roe_at_least_5", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.ROE.AtLeast(5)
			}},
			{Name: "per_1_to_50", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.PER.Between(1, 50)
			}},
			{Name: "pbr_0.1_to_10", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.PBR.Between(0.1, 10)
			}},
			{Name: "revenue_streak_2y", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.RevenueGrowthStreak >= 2
			}},
			{Name: "net_income_streak_1y", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.NetIncomeGrowthStreak >= 1
			}},
			{Name: "mcap_50b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorLarge
			}},
			{Name: "per_normal", Test: func(r *contracts.DashboardRow) bool {
				return !r.Valuation.PERAnomalous
			}},
			{Name: "f_score_5", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.FScore >= 5
			}},
		},
		Weights: CompositeWeights(),
	}
}

// ② 모멘텀/성장주: 고성장 + 이익률 개선, 분기 YoY로 계절성 통제
func momentumStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyMomentum,
		All: []Condition{
			{Name: "cagr_15", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.RevenueCAGR.Valid && r.Fundamental.OperatingIncomeCAGR.Valid &&
					(r.Fundamental.RevenueCAGR.AtLeast(15) || r.Fundamental.OperatingIncomeCAGR.AtLeast(15))
			}},
			{Name: "margin_improved", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.MarginImproved
			}},
			{Name: "roe_at_least_5", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.ROE.AtLeast(5)
			}},
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "mcap_50b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorLarge
			}},
		},
		Weights: []WeightTerm{
			{Metric: MetricRevenueCAGR, Weight: 2.0},
			{Metric: MetricOperatingIncomeCAGR, Weight: 2.5},
			{Metric: MetricROE, Weight: 1.5},
			{Metric: MetricOperatingMargin, Weight: 1.0},
			{Metric: MetricMarginImprovedFlag, Weight: 0.5},
			{Metric: MetricQRevenueYoY, Weight: 2.0},
			{Metric: MetricQOperatingIncomeYoY, Weight: 2.0},
			{Metric: MetricQRevenueYoYStreak, Weight: 1.5},
			{Metric: MetricRSI14, Weight: 1.0},
			{Metric: MetricMA20Deviation, Weight: 1.0},
			{Metric: MetricTradingValueChange, Weight: 0.5},
		},
	}
}

// ③ GARP: 성장 대비 합리적 가격 (피터 린치 스타일)
func garpStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyGARP,
		All: []Condition{
			{Name: "peg_below_1.5", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.PEG.Valid && r.Valuation.PEG.Float > 0 && r.Valuation.PEG.Float < 1.5
			}},
			{Name: "revenue_cagr_10", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.RevenueCAGR.AtLeast(10)
			}},
			{Name: "roe_at_least_12", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.ROE.AtLeast(12)
			}},
			{Name: "per_5_to_30", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.PER.Between(5, 30)
			}},
			{Name: "mcap_50b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorLarge
			}},
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "per_normal", Test: func(r *contracts.DashboardRow) bool {
				return !r.Valuation.PERAnomalous
			}},
		},
		Weights: []WeightTerm{
			{Metric: MetricPEG, Weight: 3.0},
			{Metric: MetricRevenueCAGR, Weight: 2.0},
			{Metric: MetricOperatingIncomeCAGR, Weight: 1.5},
			{Metric: MetricROE, Weight: 2.0},
			{Metric: MetricPER, Weight: 1.5},
			{Metric: MetricPBR, Weight: 1.0},
			{Metric: MetricCashConversion, Weight: 1.0},
			{Metric: MetricFScore, Weight: 0.5},
			{Metric: MetricMarginImprovedFlag, Weight: 0.5},
			{Metric: MetricSRIMDeviation, Weight: 0.5},
		},
	}
}

// ④ 캐시카우: 고마진 + 저부채 + 현금창출 (버핏 스타일)
func cashcowStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyCashcow,
		All: []Condition{
			{Name: "roe_at_least_10", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.ROE.AtLeast(10)
			}},
			{Name: "operating_margin_10", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.OperatingMargin.AtLeast(10)
			}},
			// 부채비율 미확인 종목은 통과시키지 않음
			{Name: "debt_ratio_below_100", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.DebtRatio.Below(100)
			}},
			{Name: "revenue_streak_1y", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.RevenueGrowthStreak >= 1
			}},
			{Name: "mcap_50b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorLarge
			}},
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "earnings_quality", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.EarningsQuality
			}},
			{Name: "f_score_6", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.FScore >= 6
			}},
		},
		Weights: []WeightTerm{
			{Metric: MetricROE, Weight: 2.0},
			{Metric: MetricOperatingMargin, Weight: 2.0},
			{Metric: MetricDebtRatio, Weight: 1.5},
			{Metric: MetricFCFYield, Weight: 2.5},
			{Metric: MetricDebtCoverage, Weight: 2.0},
			{Metric: MetricRevenueStreak, Weight: 1.0},
			{Metric: MetricPER, Weight: 1.0},
			{Metric: MetricDividendYield, Weight: 0.5},
			{Metric: MetricFScore, Weight: 1.0},
			{Metric: MetricSRIMDeviation, Weight: 0.5},
		},
	}
}

// ⑤ 턴어라운드: 적자→흑자 전환 또는 이익률 급개선 (역발상)
func turnaroundStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyTurnaround,
		All: []Condition{
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "mcap_30b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorSmall
			}},
		},
		Any: []Condition{
			{Name: "turnaround", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.Turnaround
			}},
			{Name: "margin_jump", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.MarginJump
			}},
		},
		Weights: []WeightTerm{
			{Metric: MetricMarginDelta, Weight: 2.0},
			{Metric: MetricRevenueCAGR, Weight: 2.0},
			{Metric: MetricROE, Weight: 1.5},
			{Metric: MetricTurnaroundFlag, Weight: 2.0},
			{Metric: MetricPER, Weight: 1.0},
			{Metric: MetricMarginJumpFlag, Weight: 1.5},
			// 과매도 선호: RSI 낮은 쪽에 가점
			{Metric: MetricRSI14, Weight: 1.0, Invert: true},
			// 52주 저점 근접 = 저점 매수 기회
			{Metric: MetricPctOff52wLow, Weight: 1.0},
			{Metric: MetricFScore, Weight: 0.5},
			{Metric: MetricSRIMDeviation, Weight: 0.5},
		},
	}
}

// ⑥ 배당 성장주: 배당과 수익이 함께 늘어나는 기업
func dividendGrowthStrategy() Strategy {
	return Strategy{
		Name: contracts.StrategyDividendGrowth,
		All: []Condition{
			{Name: "net_income_streak_2y", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.NetIncomeGrowthStreak >= 2
			}},
			{Name: "dividend_streak_1y", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.DividendGrowthStreak >= 1
			}},
			{Name: "positive_dps_cagr", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.DPSCAGR.Positive()
			}},
			{Name: "roe_at_least_5", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.ROE.AtLeast(5)
			}},
			{Name: "positive_dividend_yield", Test: func(r *contracts.DashboardRow) bool {
				return r.Valuation.DividendYield.Positive()
			}},
			{Name: "mcap_30b", Test: func(r *contracts.DashboardRow) bool {
				return r.Quote.MarketCap >= mcapFloorSmall
			}},
			{Name: "positive_ttm_net_income", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.TTMNetIncome.Positive()
			}},
			{Name: "dividend_earnings_tandem", Test: func(r *contracts.DashboardRow) bool {
				return r.Fundamental.DividendEarningsTandem
			}},
		},
		Weights: []WeightTerm{
			{Metric: MetricDPSCAGR, Weight: 3.0},
			{Metric: MetricNetIncomeCAGR, Weight: 2.5},
			{Metric: MetricDividendStreak, Weight: 2.0},
			{Metric: MetricNetIncomeStreak, Weight: 2.0},
			{Metric: MetricROE, Weight: 1.5},
			{Metric: MetricDividendYield, Weight: 1.5},
			{Metric: MetricDebtRatio, Weight: 1.0},
			{Metric: MetricFScore, Weight: 0.5},
			{Metric: MetricPER, Weight: 0.5},
		},
	}
}
