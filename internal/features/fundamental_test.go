package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func annualItem(account, period string, value float64) contracts.StatementItem {
	return contracts.StatementItem{Account: account, Period: period, Freq: contracts.FreqAnnual, Value: value}
}

func quarterItem(account, period string, value float64) contracts.StatementItem {
	return contracts.StatementItem{Account: account, Period: period, Freq: contracts.FreqQuarterly, Value: value}
}

// healthyData builds a security with three rising annual years and eight
// quarters, engineered so every F-score component passes.
func healthyData() *contracts.SecurityData {
	items := []contracts.StatementItem{
		annualItem("매출액", "2022-12-31", 1000),
		annualItem("매출액", "2023-12-31", 1100),
		annualItem("매출액", "2024-12-31", 1210),
		annualItem("영업이익", "2022-12-31", 100),
		annualItem("영업이익", "2023-12-31", 110),
		annualItem("영업이익", "2024-12-31", 140),
		annualItem("당기순이익", "2022-12-31", 70),
		annualItem("당기순이익", "2023-12-31", 80),
		annualItem("당기순이익", "2024-12-31", 100),
		annualItem("자본총계", "2023-12-31", 780),
		annualItem("자본총계", "2024-12-31", 800),
		annualItem("부채총계", "2023-12-31", 500),
		annualItem("부채총계", "2024-12-31", 450),
		annualItem("자산총계", "2023-12-31", 1300),
		annualItem("자산총계", "2024-12-31", 1250),
		annualItem("유동자산", "2023-12-31", 400),
		annualItem("유동자산", "2024-12-31", 500),
		annualItem("유동부채", "2023-12-31", 200),
		annualItem("유동부채", "2024-12-31", 210),
		annualItem("매출총이익", "2023-12-31", 300),
		annualItem("매출총이익", "2024-12-31", 360),
		annualItem("영업활동현금흐름", "2022-12-31", 90),
		annualItem("영업활동현금흐름", "2023-12-31", 100),
		annualItem("영업활동현금흐름", "2024-12-31", 120),
		annualItem("유형자산의취득", "2023-12-31", 30),
		annualItem("유형자산의취득", "2024-12-31", 30),
	}

	// 8개 분기 매출: TTM YoY까지 정의되도록
	revQ := map[string]float64{
		"2023-03-31": 250, "2023-06-30": 260, "2023-09-30": 270, "2023-12-31": 280,
		"2024-03-31": 300, "2024-06-30": 310, "2024-09-30": 320, "2024-12-31": 330,
	}
	for p, v := range revQ {
		items = append(items, quarterItem("매출액", p, v))
	}
	for _, p := range []string{"2024-03-31", "2024-06-30", "2024-09-30", "2024-12-31"} {
		items = append(items, quarterItem("영업이익", p, 35))
		items = append(items, quarterItem("당기순이익", p, 25))
		items = append(items, quarterItem("영업활동현금흐름", p, 30))
		items = append(items, quarterItem("유형자산의취득", p, 7.5))
	}

	return &contracts.SecurityData{
		Security:   contracts.Security{Code: "100001", Type: contracts.TypeOrdinary},
		Statements: items,
		Indicators: []contracts.IndicatorValue{
			{Group: contracts.GroupDPS, Account: "주당배당금", Period: "2022-12-31", Value: 1000},
			{Group: contracts.GroupDPS, Account: "주당배당금", Period: "2023-12-31", Value: 1100},
			{Group: contracts.GroupDPS, Account: "주당배당금", Period: "2024-12-31", Value: 1200},
		},
		Shares: []contracts.ShareCount{
			{Date: "2023-06-30", Outstanding: 1_000_000},
			{Date: "2024-12-20", Outstanding: 1_000_000},
		},
	}
}

func TestCalculateTTMFromQuarters(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1)
	require.NoError(t, err)

	assert.True(t, f.TTMRevenue.Valid)
	assert.InDelta(t, 1260.0, f.TTMRevenue.Float, 1e-9)
	assert.Equal(t, "2024-12-31", f.LatestQuarter)

	assert.InDelta(t, 140.0, f.TTMOperatingIncome.Float, 1e-9)
	assert.InDelta(t, 100.0, f.TTMNetIncome.Float, 1e-9)
	assert.InDelta(t, 90.0, f.TTMFreeCashFlow.Float, 1e-9)
}

func TestCalculateTTMAnnualFallback(t *testing.T) {
	agg := NewAggregator(testLogger())

	data := &contracts.SecurityData{
		Statements: []contracts.StatementItem{
			annualItem("매출액", "2024-12-31", 500),
			quarterItem("매출액", "2024-09-30", 120),
			quarterItem("매출액", "2024-12-31", 130),
		},
	}

	f, err := agg.Calculate(context.Background(), "100002", data, 1)
	require.NoError(t, err)

	// 분기 4개 미만이면 최신 연간치로
	assert.InDelta(t, 500.0, f.TTMRevenue.Float, 1e-9)
}

func TestCalculateGrowth(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, f.RevenueCAGR.Or(0), 0.1)
	assert.Equal(t, 2, f.RevenueGrowthStreak)
	assert.Equal(t, 2, f.NetIncomeGrowthStreak)
	assert.Equal(t, 2, f.DividendGrowthStreak)

	// 최근 분기 YoY: 330 vs 280
	assert.InDelta(t, 17.857, f.QuarterRevenueYoY.Or(0), 0.01)
	assert.Equal(t, 4, f.QuarterRevenueYoYStreak)

	// TTM YoY: 1260 vs 1060
	assert.InDelta(t, 18.868, f.TTMRevenueYoY.Or(0), 0.01)

	assert.Equal(t, 3, f.YearsOfData)
}

func TestCalculateMarginTrend(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1)
	require.NoError(t, err)

	// TTM 영업이익률 140/1260, 전년 110/1100
	assert.InDelta(t, 11.11, f.OperatingMargin.Or(0), 0.01)
	assert.InDelta(t, 10.0, f.PriorOperatingMargin.Or(0), 1e-9)
	assert.True(t, f.MarginImproved)
	assert.False(t, f.MarginJump)
	assert.False(t, f.Turnaround)
}

func TestCalculateFScoreAllPass(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1)
	require.NoError(t, err)

	d := f.FScoreDetail
	assert.True(t, d.Profitable)
	assert.True(t, d.CashFlowPositive)
	assert.True(t, d.AccrualQuality)
	assert.True(t, d.ROAImproved)
	assert.True(t, d.LeverageDown)
	assert.True(t, d.LiquidityUp)
	assert.True(t, d.AssetTurnoverUp)
	assert.True(t, d.GrossMarginUp)
	assert.True(t, d.NoDilution)
	assert.Equal(t, 9, f.FScore)
}

func TestCalculateCapexRecordedAsOutflow(t *testing.T) {
	agg := NewAggregator(testLogger())

	// 원천 데이터의 CAPEX는 음수 유출
	data := &contracts.SecurityData{
		Statements: []contracts.StatementItem{
			annualItem("영업활동현금흐름", "2023-12-31", 80),
			annualItem("영업활동현금흐름", "2024-12-31", 100),
			annualItem("유형자산의취득", "2023-12-31", -35),
			annualItem("유형자산의취득", "2024-12-31", -40),
		},
	}

	f, err := agg.Calculate(context.Background(), "100005", data, 1)
	require.NoError(t, err)

	assert.InDelta(t, 40.0, f.TTMCapex.Float, 1e-9)
	assert.InDelta(t, 60.0, f.TTMFreeCashFlow.Float, 1e-9)

	// FCF 45 -> 60
	assert.True(t, f.FreeCashFlowCAGR.Valid)
	assert.InDelta(t, 33.3, f.FreeCashFlowCAGR.Float, 0.2)
}

func TestCalculateFScoreLeverageUsesEquity(t *testing.T) {
	agg := NewAggregator(testLogger())

	// 부채 감소보다 자본이 더 빨리 줄면 부채비율은 오히려 상승
	data := &contracts.SecurityData{
		Statements: []contracts.StatementItem{
			annualItem("부채총계", "2023-12-31", 500),
			annualItem("부채총계", "2024-12-31", 450),
			annualItem("자본총계", "2023-12-31", 1000),
			annualItem("자본총계", "2024-12-31", 700),
			annualItem("자산총계", "2023-12-31", 1500),
			annualItem("자산총계", "2024-12-31", 1400),
		},
	}

	f, err := agg.Calculate(context.Background(), "100006", data, 1)
	require.NoError(t, err)
	assert.False(t, f.FScoreDetail.LeverageDown)
}

func TestCalculateFScoreMissingComparators(t *testing.T) {
	agg := NewAggregator(testLogger())

	// 1년치만 있으면 비교 항목은 전부 false
	data := &contracts.SecurityData{
		Statements: []contracts.StatementItem{
			annualItem("매출액", "2024-12-31", 1000),
			annualItem("당기순이익", "2024-12-31", 100),
			annualItem("영업활동현금흐름", "2024-12-31", 120),
		},
	}

	f, err := agg.Calculate(context.Background(), "100003", data, 1)
	require.NoError(t, err)

	assert.True(t, f.FScoreDetail.Profitable)
	assert.True(t, f.FScoreDetail.CashFlowPositive)
	assert.True(t, f.FScoreDetail.AccrualQuality)
	assert.False(t, f.FScoreDetail.ROAImproved)
	assert.False(t, f.FScoreDetail.LeverageDown)
	assert.False(t, f.FScoreDetail.NoDilution)
	assert.Equal(t, 3, f.FScore)
}

func TestCalculateTurnaround(t *testing.T) {
	agg := NewAggregator(testLogger())

	data := &contracts.SecurityData{
		Statements: []contracts.StatementItem{
			annualItem("당기순이익", "2023-12-31", -50),
			annualItem("당기순이익", "2024-12-31", 30),
		},
	}

	f, err := agg.Calculate(context.Background(), "100004", data, 1)
	require.NoError(t, err)
	assert.True(t, f.Turnaround)
}

func TestCalculateUnitMultiplier(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1e6)
	require.NoError(t, err)

	// 재무제표 값은 배율 적용, 주당 배당금은 그대로
	assert.InDelta(t, 1260.0*1e6, f.TTMRevenue.Float, 1)
	assert.InDelta(t, 1200.0, f.LatestDPS.Or(0), 1e-9)
}

func TestCalculateDividendEarningsTandem(t *testing.T) {
	agg := NewAggregator(testLogger())

	f, err := agg.Calculate(context.Background(), "100001", healthyData(), 1)
	require.NoError(t, err)
	assert.True(t, f.DividendEarningsTandem)
}

func TestNoDilution(t *testing.T) {
	tests := []struct {
		name   string
		shares []contracts.ShareCount
		want   bool
	}{
		{
			"stable share count",
			[]contracts.ShareCount{
				{Date: "2023-06-30", Outstanding: 100},
				{Date: "2024-12-20", Outstanding: 100},
			},
			true,
		},
		{
			"buyback",
			[]contracts.ShareCount{
				{Date: "2023-06-30", Outstanding: 110},
				{Date: "2024-12-20", Outstanding: 100},
			},
			true,
		},
		{
			"dilution",
			[]contracts.ShareCount{
				{Date: "2023-06-30", Outstanding: 100},
				{Date: "2024-12-20", Outstanding: 120},
			},
			false,
		},
		{
			"single record",
			[]contracts.ShareCount{{Date: "2024-12-20", Outstanding: 100}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, noDilution(tt.shares))
		})
	}
}
