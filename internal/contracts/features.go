package contracts

// FScoreDetail holds the nine Piotroski components. Each component defaults
// to false when its prior-year comparator is missing.
type FScoreDetail struct {
	Profitable       bool `json:"profitable"`         // TTM 순이익 > 0
	CashFlowPositive bool `json:"cash_flow_positive"` // TTM 영업CF > 0
	ROAImproved      bool `json:"roa_improved"`
	AccrualQuality   bool `json:"accrual_quality"` // 영업CF > 순이익
	LeverageDown     bool `json:"leverage_down"`
	LiquidityUp      bool `json:"liquidity_up"`
	NoDilution       bool `json:"no_dilution"`
	GrossMarginUp    bool `json:"gross_margin_up"`
	AssetTurnoverUp  bool `json:"asset_turnover_up"`
}

// Sum returns the F-score, an integer in [0, 9].
func (f FScoreDetail) Sum() int {
	score := 0
	for _, b := range []bool{
		f.Profitable, f.CashFlowPositive, f.ROAImproved, f.AccrualQuality,
		f.LeverageDown, f.LiquidityUp, f.NoDilution, f.GrossMarginUp,
		f.AssetTurnoverUp,
	} {
		if b {
			score++
		}
	}
	return score
}

// FundamentalFeatures is the per-security output of the fundamental
// aggregator. Every Value field is undefined (not zero) when its
// preconditions are not met.
type FundamentalFeatures struct {
	// TTM totals
	TTMRevenue           Value `json:"ttm_revenue"`
	TTMOperatingIncome   Value `json:"ttm_operating_income"`
	TTMNetIncome         Value `json:"ttm_net_income"`
	TTMOperatingCashFlow Value `json:"ttm_operating_cash_flow"`
	TTMCapex             Value `json:"ttm_capex"`
	TTMFreeCashFlow      Value `json:"ttm_free_cash_flow"`

	// Latest balance-sheet aggregates
	Equity      Value `json:"equity"`
	Debt        Value `json:"debt"`
	TotalAssets Value `json:"total_assets"`

	// Multi-year growth (% per year)
	RevenueCAGR           Value `json:"revenue_cagr"`
	OperatingIncomeCAGR   Value `json:"operating_income_cagr"`
	NetIncomeCAGR         Value `json:"net_income_cagr"`
	OperatingCashFlowCAGR Value `json:"operating_cash_flow_cagr"`
	FreeCashFlowCAGR      Value `json:"free_cash_flow_cagr"`
	DPSCAGR               Value `json:"dps_cagr"`

	// Consecutive-growth years
	RevenueGrowthStreak           int `json:"revenue_growth_streak"`
	OperatingIncomeGrowthStreak   int `json:"operating_income_growth_streak"`
	NetIncomeGrowthStreak         int `json:"net_income_growth_streak"`
	OperatingCashFlowGrowthStreak int `json:"operating_cash_flow_growth_streak"`
	DividendGrowthStreak          int `json:"dividend_growth_streak"`

	// Quarterly seasonality-controlled growth
	QuarterRevenueYoY               Value  `json:"q_revenue_yoy"`
	QuarterOperatingIncomeYoY       Value  `json:"q_operating_income_yoy"`
	QuarterNetIncomeYoY             Value  `json:"q_net_income_yoy"`
	QuarterRevenueYoYStreak         int    `json:"q_revenue_yoy_streak"`
	QuarterOperatingIncomeYoYStreak int    `json:"q_operating_income_yoy_streak"`
	QuarterNetIncomeYoYStreak       int    `json:"q_net_income_yoy_streak"`
	TTMRevenueYoY                   Value  `json:"ttm_revenue_yoy"`
	TTMOperatingIncomeYoY           Value  `json:"ttm_operating_income_yoy"`
	TTMNetIncomeYoY                 Value  `json:"ttm_net_income_yoy"`
	LatestQuarter                   string `json:"latest_quarter"`

	// Margin trend (percentage points)
	OperatingMargin      Value `json:"operating_margin"`
	PriorOperatingMargin Value `json:"prior_operating_margin"`
	MarginDelta          Value `json:"margin_delta"`
	MarginImproved       bool  `json:"margin_improved"`
	MarginJump           bool  `json:"margin_jump"` // +5%p 이상 급개선

	// Turnaround: prior-year net income <= 0, current TTM > 0
	Turnaround bool `json:"turnaround"`

	FScore       int          `json:"f_score"`
	FScoreDetail FScoreDetail `json:"f_score_detail"`

	LatestDPS Value `json:"latest_dps"`
	// Net income streak >= 2y together with dividend streak >= 1y
	DividendEarningsTandem bool `json:"dividend_earnings_tandem"`

	YearsOfData int `json:"years_of_data"`
}

// ValuationFeatures is the per-security output of the valuation calculator.
type ValuationFeatures struct {
	PER Value `json:"per"`
	PBR Value `json:"pbr"`
	PSR Value `json:"psr"`
	PEG Value `json:"peg"`

	EPS Value `json:"eps"`
	BPS Value `json:"bps"`

	ROE       Value `json:"roe"`        // %
	DebtRatio Value `json:"debt_ratio"` // 부채/자본 %

	DividendYield Value `json:"dividend_yield"` // %
	EarningsYield Value `json:"earnings_yield"` // %
	FCFYield      Value `json:"fcf_yield"`      // %

	CashConversion Value `json:"cash_conversion"` // 영업CF/순이익 %
	CapexRatio     Value `json:"capex_ratio"`     // CAPEX/영업CF %
	DebtCoverage   Value `json:"debt_coverage"`   // 영업CF/부채

	EarningsQuality bool `json:"earnings_quality"` // 영업CF > 순이익

	FairValueSRIM Value `json:"fair_value_srim"`
	SRIMDeviation Value `json:"srim_deviation"` // (적정가-현재가)/현재가 %

	PERAnomalous bool `json:"per_anomalous"` // PER < 0.5 or > 500
}

// TechnicalFeatures is the per-security output of the technical calculator.
type TechnicalFeatures struct {
	PctOff52wHigh Value `json:"pct_off_52w_high"`
	PctOff52wLow  Value `json:"pct_off_52w_low"`

	MA20Deviation Value `json:"ma20_deviation"`
	MA60Deviation Value `json:"ma60_deviation"`

	RSI14 Value `json:"rsi_14"`

	AvgTradingValue20  Value `json:"avg_trading_value_20"`
	TradingValueChange Value `json:"trading_value_change"` // 5일 vs 20일 평균 %

	Volatility60 Value `json:"volatility_60"` // 연환산 %
}
