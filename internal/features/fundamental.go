package features

import (
	"context"
	"sort"
	"time"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Aggregator computes every fundamental feature of one security from its raw
// statement, indicator and share-count history.
// ⭐ SSOT: TTM/성장률/F-score 계산은 여기서만
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a fundamental aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Calculate computes the fundamental feature vector. multiplier converts raw
// statement values to KRW; per-share figures (DPS) are already in KRW.
func (a *Aggregator) Calculate(ctx context.Context, code string, data *contracts.SecurityData, multiplier float64) (contracts.FundamentalFeatures, error) {
	var f contracts.FundamentalFeatures

	// Annual flow series
	revenueY := statementSeries(data.Statements, contracts.FreqAnnual, accRevenue).Scale(multiplier)
	opIncomeY := statementSeries(data.Statements, contracts.FreqAnnual, accOperatingIncome).Scale(multiplier)
	netIncomeY := statementSeries(data.Statements, contracts.FreqAnnual, accNetIncome).Scale(multiplier)
	opCashY := statementSeries(data.Statements, contracts.FreqAnnual, accOperatingCashFlow).Scale(multiplier)
	// CAPEX는 음수 유출로 기재되므로 절대값으로 통일
	capexY := statementSeries(data.Statements, contracts.FreqAnnual, accCapex).Scale(multiplier).Abs()
	grossY := statementSeries(data.Statements, contracts.FreqAnnual, accGrossProfit).Scale(multiplier)

	// Annual balance series
	equityY := statementSeries(data.Statements, contracts.FreqAnnual, accEquity).Scale(multiplier)
	debtY := statementSeries(data.Statements, contracts.FreqAnnual, accDebt).Scale(multiplier)
	assetsY := statementSeries(data.Statements, contracts.FreqAnnual, accTotalAssets).Scale(multiplier)
	currAssetsY := statementSeries(data.Statements, contracts.FreqAnnual, accCurrentAssets).Scale(multiplier)
	currLiabY := statementSeries(data.Statements, contracts.FreqAnnual, accCurrentLiabilities).Scale(multiplier)

	// Quarterly flow series
	revenueQ := statementSeries(data.Statements, contracts.FreqQuarterly, accRevenue).Scale(multiplier)
	opIncomeQ := statementSeries(data.Statements, contracts.FreqQuarterly, accOperatingIncome).Scale(multiplier)
	netIncomeQ := statementSeries(data.Statements, contracts.FreqQuarterly, accNetIncome).Scale(multiplier)
	opCashQ := statementSeries(data.Statements, contracts.FreqQuarterly, accOperatingCashFlow).Scale(multiplier)
	capexQ := statementSeries(data.Statements, contracts.FreqQuarterly, accCapex).Scale(multiplier).Abs()

	// DPS는 주당 금액이라 단위 보정 대상이 아님
	dps := indicatorSeries(data.Indicators, contracts.GroupDPS, accDPS)

	// TTM totals: 분기 4개 합산, 부족하면 최신 연간치
	f.TTMRevenue, f.LatestQuarter = ttm(revenueQ, revenueY)
	f.TTMOperatingIncome, _ = ttm(opIncomeQ, opIncomeY)
	f.TTMNetIncome, _ = ttm(netIncomeQ, netIncomeY)
	f.TTMOperatingCashFlow, _ = ttm(opCashQ, opCashY)
	f.TTMCapex, _ = ttm(capexQ, capexY)
	if f.TTMOperatingCashFlow.Valid && f.TTMCapex.Valid {
		f.TTMFreeCashFlow = contracts.Some(f.TTMOperatingCashFlow.Float - f.TTMCapex.Float)
	}

	f.Equity, _ = equityY.Latest()
	f.Debt, _ = debtY.Latest()
	f.TotalAssets, _ = assetsY.Latest()

	// Multi-year growth
	f.RevenueCAGR = revenueY.CAGR()
	f.OperatingIncomeCAGR = opIncomeY.CAGR()
	f.NetIncomeCAGR = netIncomeY.CAGR()
	f.OperatingCashFlowCAGR = opCashY.CAGR()
	f.FreeCashFlowCAGR = fcfSeries(opCashY, capexY).CAGR()
	f.DPSCAGR = dps.annualOnly().CAGR()

	f.RevenueGrowthStreak = revenueY.GrowthStreak()
	f.OperatingIncomeGrowthStreak = opIncomeY.GrowthStreak()
	f.NetIncomeGrowthStreak = netIncomeY.GrowthStreak()
	f.OperatingCashFlowGrowthStreak = opCashY.GrowthStreak()
	f.DividendGrowthStreak = dps.annualOnly().GrowthStreak()

	// Quarterly YoY (계절성 보정)
	revYoY := revenueQ.YoYSeries()
	opYoY := opIncomeQ.YoYSeries()
	niYoY := netIncomeQ.YoYSeries()
	f.QuarterRevenueYoY, _ = revYoY.Latest()
	f.QuarterOperatingIncomeYoY, _ = opYoY.Latest()
	f.QuarterNetIncomeYoY, _ = niYoY.Latest()
	f.QuarterRevenueYoYStreak = revenueQ.YoYStreak()
	f.QuarterOperatingIncomeYoYStreak = opIncomeQ.YoYStreak()
	f.QuarterNetIncomeYoYStreak = netIncomeQ.YoYStreak()

	f.TTMRevenueYoY = ttmYoY(revenueQ)
	f.TTMOperatingIncomeYoY = ttmYoY(opIncomeQ)
	f.TTMNetIncomeYoY = ttmYoY(netIncomeQ)

	// Margin trend
	f.OperatingMargin = marginOf(f.TTMOperatingIncome, f.TTMRevenue)
	f.PriorOperatingMargin = priorAnnualMargin(opIncomeY, revenueY)
	if f.OperatingMargin.Valid && f.PriorOperatingMargin.Valid {
		delta := f.OperatingMargin.Float - f.PriorOperatingMargin.Float
		f.MarginDelta = contracts.Some(delta)
		f.MarginImproved = delta > 0
		f.MarginJump = delta >= 5
	}

	// Turnaround: 직전 연간 순이익 적자 -> TTM 흑자
	if prior, ok := priorAnnual(netIncomeY); ok {
		f.Turnaround = prior <= 0 && f.TTMNetIncome.Positive()
	}

	f.FScoreDetail = a.fScore(data, f, netIncomeY, debtY, equityY, assetsY, currAssetsY, currLiabY, grossY, revenueY)
	f.FScore = f.FScoreDetail.Sum()

	f.LatestDPS, _ = dps.Latest()
	f.DividendEarningsTandem = f.NetIncomeGrowthStreak >= 2 && f.DividendGrowthStreak >= 1

	f.YearsOfData = len(revenueY)

	a.logger.WithFields(map[string]interface{}{
		"code":    code,
		"quarter": f.LatestQuarter,
		"f_score": f.FScore,
		"years":   f.YearsOfData,
	}).Debug("Calculated fundamental features")

	return f, nil
}

// fScore computes the nine Piotroski components. 비교 대상 결측 = false.
func (a *Aggregator) fScore(data *contracts.SecurityData, f contracts.FundamentalFeatures,
	netIncomeY, debtY, equityY, assetsY, currAssetsY, currLiabY, grossY, revenueY Series) contracts.FScoreDetail {

	var d contracts.FScoreDetail

	d.Profitable = f.TTMNetIncome.Positive()
	d.CashFlowPositive = f.TTMOperatingCashFlow.Positive()
	d.AccrualQuality = f.TTMOperatingCashFlow.Valid && f.TTMNetIncome.Valid &&
		f.TTMOperatingCashFlow.Float > f.TTMNetIncome.Float

	// ROA 개선: 올해 TTM NI / 최신 자산 vs 전년 NI / 전년 자산
	if assetsPrev, assetsCurr, ok := assetsY.lastTwo(); ok && assetsPrev > 0 && assetsCurr > 0 {
		if niPrev, ok2 := priorAnnual(netIncomeY); ok2 && f.TTMNetIncome.Valid {
			d.ROAImproved = f.TTMNetIncome.Float/assetsCurr > niPrev/assetsPrev
		}

		// Asset turnover up: 매출/자산 증가
		if revPrev, revCurr, ok2 := revenueY.lastTwo(); ok2 {
			d.AssetTurnoverUp = revCurr/assetsCurr > revPrev/assetsPrev
		}
	}

	// Leverage down: 부채비율(부채/자본) 감소. 자본잠식 상태면 false.
	if debtPrev, debtCurr, ok := debtY.lastTwo(); ok {
		if eqPrev, eqCurr, ok2 := equityY.lastTwo(); ok2 && eqPrev > 0 && eqCurr > 0 {
			d.LeverageDown = debtCurr/eqCurr < debtPrev/eqPrev
		}
	}

	// Liquidity up: 유동비율 증가
	if caPrev, caCurr, ok := currAssetsY.lastTwo(); ok {
		if clPrev, clCurr, ok2 := currLiabY.lastTwo(); ok2 && clPrev > 0 && clCurr > 0 {
			d.LiquidityUp = caCurr/clCurr > caPrev/clPrev
		}
	}

	// Gross margin up
	if gpPrev, gpCurr, ok := grossY.lastTwo(); ok {
		if revPrev, revCurr, ok2 := revenueY.lastTwo(); ok2 && revPrev > 0 && revCurr > 0 {
			d.GrossMarginUp = gpCurr/revCurr > gpPrev/revPrev
		}
	}

	d.NoDilution = noDilution(data.Shares)

	return d
}

// ttm returns the trailing-twelve-month total: the sum of the four most
// recent quarters when at least four exist, otherwise the latest annual
// value. The second return is the most recent quarter-end used.
func ttm(quarterly, annual Series) (contracts.Value, string) {
	dates := quarterly.Dates()
	if len(dates) >= 4 {
		var sum float64
		for _, d := range dates[len(dates)-4:] {
			sum += quarterly[d]
		}
		return contracts.Some(sum), dates[len(dates)-1]
	}
	v, period := annual.Latest()
	return v, period
}

// ttmYoY compares the latest four-quarter sum with the preceding four.
// 이전 합이 양수일 때만 정의됨.
func ttmYoY(quarterly Series) contracts.Value {
	dates := quarterly.Dates()
	if len(dates) < 8 {
		return contracts.None()
	}
	var curr, prev float64
	for _, d := range dates[len(dates)-4:] {
		curr += quarterly[d]
	}
	for _, d := range dates[len(dates)-8 : len(dates)-4] {
		prev += quarterly[d]
	}
	if prev <= 0 {
		return contracts.None()
	}
	return contracts.Some((curr/prev - 1) * 100)
}

// marginOf returns numer/denom in %, undefined unless denom > 0.
func marginOf(numer, denom contracts.Value) contracts.Value {
	if !numer.Valid || !denom.Valid || denom.Float <= 0 {
		return contracts.None()
	}
	return contracts.Some(numer.Float / denom.Float * 100)
}

// priorAnnual returns the second-most-recent annual value.
func priorAnnual(s Series) (float64, bool) {
	prev, _, ok := s.lastTwo()
	return prev, ok
}

// priorAnnualMargin computes last year's operating margin from annual series.
func priorAnnualMargin(opIncomeY, revenueY Series) contracts.Value {
	oi, ok := priorAnnual(opIncomeY)
	if !ok {
		return contracts.None()
	}
	rev, ok := priorAnnual(revenueY)
	if !ok || rev <= 0 {
		return contracts.None()
	}
	return contracts.Some(oi / rev * 100)
}

// fcfSeries builds FCF = 영업CF - CAPEX on the dates both series share.
func fcfSeries(opCash, capex Series) Series {
	out := make(Series)
	for d, cf := range opCash {
		cx, ok := capex[d]
		if !ok {
			continue
		}
		out[d] = cf - cx
	}
	return out
}

// noDilution reports whether outstanding shares did not grow over the most
// recent ~year of share-count history.
func noDilution(shares []contracts.ShareCount) bool {
	if len(shares) < 2 {
		return false
	}
	sorted := make([]contracts.ShareCount, len(shares))
	copy(sorted, shares)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	latest := sorted[len(sorted)-1]
	latestDate, err := time.Parse("2006-01-02", latest.Date)
	if err != nil {
		return false
	}
	cutoff := latestDate.AddDate(-1, 0, 0).Format("2006-01-02")

	// 1년 전 시점에 가장 가까운 과거 기록
	var base *contracts.ShareCount
	for i := range sorted {
		if sorted[i].Date <= cutoff {
			base = &sorted[i]
		}
	}
	if base == nil {
		base = &sorted[0]
	}
	return latest.Outstanding <= base.Outstanding
}
