package scoring

import (
	"github.com/wonny/kquant/internal/contracts"
)

// MetricKind selects how a metric is normalized to a [0, 100] score.
type MetricKind int

const (
	// KindPercentile ranks defined values across the whole universe.
	KindPercentile MetricKind = iota
	// KindScaled clips the raw value to [0, Cap] and maps linearly to [0, 100].
	KindScaled
	// KindFlag maps a boolean to 0 or 100.
	KindFlag
)

// Metric IDs. 전략 가중치와 API 응답에서 같은 키를 씀.
const (
	MetricPER            = "per"
	MetricPBR            = "pbr"
	MetricPEG            = "peg"
	MetricROE            = "roe"
	MetricDebtRatio      = "debt_ratio"
	MetricDividendYield  = "dividend_yield"
	MetricFCFYield       = "fcf_yield"
	MetricCashConversion = "cash_conversion"
	MetricDebtCoverage   = "debt_coverage"
	MetricSRIMDeviation  = "srim_deviation"

	MetricRevenueCAGR         = "revenue_cagr"
	MetricOperatingIncomeCAGR = "operating_income_cagr"
	MetricNetIncomeCAGR       = "net_income_cagr"
	MetricDPSCAGR             = "dps_cagr"
	MetricOperatingMargin     = "operating_margin"
	MetricMarginDelta         = "margin_delta"
	MetricFScore              = "f_score"

	MetricQRevenueYoY         = "q_revenue_yoy"
	MetricQOperatingIncomeYoY = "q_operating_income_yoy"
	MetricTTMRevenueYoY       = "ttm_revenue_yoy"
	MetricTTMOperatingYoY     = "ttm_operating_income_yoy"

	MetricRevenueStreak         = "revenue_growth_streak"
	MetricOperatingIncomeStreak = "operating_income_growth_streak"
	MetricNetIncomeStreak       = "net_income_growth_streak"
	MetricDividendStreak        = "dividend_growth_streak"
	MetricQRevenueYoYStreak     = "q_revenue_yoy_streak"

	MetricRSI14              = "rsi_14"
	MetricMA20Deviation      = "ma20_deviation"
	MetricTradingValueChange = "trading_value_change"
	MetricPctOff52wLow       = "pct_off_52w_low"

	MetricTurnaroundFlag     = "turnaround_flag"
	MetricMarginJumpFlag     = "margin_jump_flag"
	MetricMarginImprovedFlag = "margin_improved_flag"
)

// MetricDef describes how one metric is read from a row and normalized.
// LowIsBetter inverts the percentile so that 100 is always the desirable end.
type MetricDef struct {
	ID          string
	Kind        MetricKind
	LowIsBetter bool
	// Cap for KindScaled metrics
	Cap float64
	// Extract reads the raw value. Flag metrics return 0/1.
	Extract func(*contracts.DashboardRow) contracts.Value
}

func boolValue(b bool) contracts.Value {
	if b {
		return contracts.Some(1)
	}
	return contracts.Some(0)
}

// Registry returns every metric the scorer normalizes.
// ⭐ SSOT: 지표 정의는 여기서만
func Registry() []MetricDef {
	return []MetricDef{
		// Valuation: 저평가일수록 좋은 지표는 LowIsBetter
		{ID: MetricPER, Kind: KindPercentile, LowIsBetter: true,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.PER }},
		{ID: MetricPBR, Kind: KindPercentile, LowIsBetter: true,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.PBR }},
		{ID: MetricPEG, Kind: KindPercentile, LowIsBetter: true,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.PEG }},
		{ID: MetricROE, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.ROE }},
		{ID: MetricDebtRatio, Kind: KindPercentile, LowIsBetter: true,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.DebtRatio }},
		{ID: MetricDividendYield, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.DividendYield }},
		{ID: MetricFCFYield, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.FCFYield }},
		{ID: MetricCashConversion, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.CashConversion }},
		{ID: MetricDebtCoverage, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.DebtCoverage }},
		{ID: MetricSRIMDeviation, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Valuation.SRIMDeviation }},

		// Growth
		{ID: MetricRevenueCAGR, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.RevenueCAGR }},
		{ID: MetricOperatingIncomeCAGR, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.OperatingIncomeCAGR }},
		{ID: MetricNetIncomeCAGR, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.NetIncomeCAGR }},
		{ID: MetricDPSCAGR, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.DPSCAGR }},
		{ID: MetricOperatingMargin, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.OperatingMargin }},
		{ID: MetricMarginDelta, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.MarginDelta }},
		{ID: MetricFScore, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.FScore))
			}},

		// Quarterly / TTM YoY
		{ID: MetricQRevenueYoY, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.QuarterRevenueYoY }},
		{ID: MetricQOperatingIncomeYoY, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.QuarterOperatingIncomeYoY }},
		{ID: MetricTTMRevenueYoY, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.TTMRevenueYoY }},
		{ID: MetricTTMOperatingYoY, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Fundamental.TTMOperatingIncomeYoY }},

		// Streaks: 순위 대신 절대 연수로 정규화 (0~Cap년)
		{ID: MetricRevenueStreak, Kind: KindScaled, Cap: 5,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.RevenueGrowthStreak))
			}},
		{ID: MetricOperatingIncomeStreak, Kind: KindScaled, Cap: 5,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.OperatingIncomeGrowthStreak))
			}},
		{ID: MetricNetIncomeStreak, Kind: KindScaled, Cap: 5,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.NetIncomeGrowthStreak))
			}},
		{ID: MetricDividendStreak, Kind: KindScaled, Cap: 5,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.DividendGrowthStreak))
			}},
		{ID: MetricQRevenueYoYStreak, Kind: KindScaled, Cap: 4,
			Extract: func(r *contracts.DashboardRow) contracts.Value {
				return contracts.Some(float64(r.Fundamental.QuarterRevenueYoYStreak))
			}},

		// Technical
		{ID: MetricRSI14, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Technical.RSI14 }},
		{ID: MetricMA20Deviation, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Technical.MA20Deviation }},
		{ID: MetricTradingValueChange, Kind: KindPercentile,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Technical.TradingValueChange }},
		// 52주 저점 근접도: 저점에서 덜 오른 쪽이 역발상 매수에 유리
		{ID: MetricPctOff52wLow, Kind: KindPercentile, LowIsBetter: true,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return r.Technical.PctOff52wLow }},

		// Flags
		{ID: MetricTurnaroundFlag, Kind: KindFlag,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return boolValue(r.Fundamental.Turnaround) }},
		{ID: MetricMarginJumpFlag, Kind: KindFlag,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return boolValue(r.Fundamental.MarginJump) }},
		{ID: MetricMarginImprovedFlag, Kind: KindFlag,
			Extract: func(r *contracts.DashboardRow) contracts.Value { return boolValue(r.Fundamental.MarginImproved) }},
	}
}
