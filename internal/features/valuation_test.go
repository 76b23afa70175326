package features

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func TestValuationRatios(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	data := &contracts.SecurityData{
		Quote: contracts.Quote{Close: 20, MarketCap: 2000, ListedShares: 100},
	}
	fund := contracts.FundamentalFeatures{
		TTMRevenue:           contracts.Some(1260),
		TTMNetIncome:         contracts.Some(100),
		TTMOperatingCashFlow: contracts.Some(120),
		TTMCapex:             contracts.Some(30),
		TTMFreeCashFlow:      contracts.Some(90),
		Equity:               contracts.Some(800),
		Debt:                 contracts.Some(450),
		NetIncomeCAGR:        contracts.Some(20),
		LatestDPS:            contracts.Some(1),
	}

	v, err := calc.Calculate(context.Background(), "100001", data, fund)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, v.PER.Or(0), 1e-9)
	assert.InDelta(t, 2.5, v.PBR.Or(0), 1e-9)
	assert.InDelta(t, 2000.0/1260.0, v.PSR.Or(0), 1e-9)
	assert.InDelta(t, 1.0, v.PEG.Or(0), 1e-9)
	assert.InDelta(t, 5.0, v.EarningsYield.Or(0), 1e-9)
	assert.InDelta(t, 4.5, v.FCFYield.Or(0), 1e-9)
	assert.InDelta(t, 1.0, v.EPS.Or(0), 1e-9)
	assert.InDelta(t, 8.0, v.BPS.Or(0), 1e-9)
	assert.InDelta(t, 12.5, v.ROE.Or(0), 1e-9)
	assert.InDelta(t, 56.25, v.DebtRatio.Or(0), 1e-9)
	assert.InDelta(t, 5.0, v.DividendYield.Or(0), 1e-9)
	assert.InDelta(t, 120.0, v.CashConversion.Or(0), 1e-9)
	assert.InDelta(t, 25.0, v.CapexRatio.Or(0), 1e-9)
	assert.InDelta(t, 120.0/450.0, v.DebtCoverage.Or(0), 1e-9)
	assert.True(t, v.EarningsQuality)
	assert.False(t, v.PERAnomalous)

	// ROE 12.5 > Ke 8 : BPS + BPS*(12.5-8)/8 = 12.5
	assert.InDelta(t, 12.5, v.FairValueSRIM.Or(0), 1e-9)
	assert.InDelta(t, -37.5, v.SRIMDeviation.Or(0), 1e-9)
}

func TestValuationSRIMLowROE(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	data := &contracts.SecurityData{
		Quote: contracts.Quote{Close: 10, MarketCap: 1000, ListedShares: 100},
	}
	fund := contracts.FundamentalFeatures{
		TTMNetIncome: contracts.Some(40),
		Equity:       contracts.Some(800),
	}

	v, err := calc.Calculate(context.Background(), "100001", data, fund)
	require.NoError(t, err)

	// ROE 5% <= Ke : BPS * 0.9
	assert.InDelta(t, 5.0, v.ROE.Or(0), 1e-9)
	assert.InDelta(t, 7.2, v.FairValueSRIM.Or(0), 1e-9)
}

func TestValuationPERAnomalous(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	tests := []struct {
		name      string
		netIncome float64
		anomalous bool
	}{
		{"per above 500", 1, true},
		{"per below 0.5", 5000, true},
		{"per in band", 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &contracts.SecurityData{Quote: contracts.Quote{Close: 10, MarketCap: 1000}}
			fund := contracts.FundamentalFeatures{TTMNetIncome: contracts.Some(tt.netIncome)}

			v, err := calc.Calculate(context.Background(), "100001", data, fund)
			require.NoError(t, err)
			assert.Equal(t, tt.anomalous, v.PERAnomalous)
		})
	}
}

func TestValuationUndefinedOnLoss(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	data := &contracts.SecurityData{Quote: contracts.Quote{Close: 10, MarketCap: 1000}}
	fund := contracts.FundamentalFeatures{TTMNetIncome: contracts.Some(-50)}

	v, err := calc.Calculate(context.Background(), "100001", data, fund)
	require.NoError(t, err)

	// 적자면 PER 미정의, 이익수익률은 음수로 정의
	assert.False(t, v.PER.Valid)
	assert.False(t, v.PERAnomalous)
	assert.InDelta(t, -5.0, v.EarningsYield.Or(0), 1e-9)
}

func TestValuationDividendYield(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	// 배당 기록이 없어도 주가가 있으면 0으로 정의
	data := &contracts.SecurityData{Quote: contracts.Quote{Close: 10, MarketCap: 1000}}
	v, err := calc.Calculate(context.Background(), "100001", data, contracts.FundamentalFeatures{})
	require.NoError(t, err)
	assert.True(t, v.DividendYield.Valid)
	assert.Equal(t, 0.0, v.DividendYield.Float)

	// 주가가 없으면 미정의
	data = &contracts.SecurityData{Quote: contracts.Quote{Close: 0, MarketCap: 1000}}
	v, err = calc.Calculate(context.Background(), "100001", data, contracts.FundamentalFeatures{})
	require.NoError(t, err)
	assert.False(t, v.DividendYield.Valid)
}

func TestValuationZeroMarketCap(t *testing.T) {
	calc := NewValuationCalculator(testLogger())

	data := &contracts.SecurityData{Quote: contracts.Quote{}}
	fund := contracts.FundamentalFeatures{
		TTMNetIncome: contracts.Some(100),
		Equity:       contracts.Some(800),
	}

	v, err := calc.Calculate(context.Background(), "100001", data, fund)
	require.NoError(t, err)

	assert.False(t, v.PER.Valid)
	assert.False(t, v.PBR.Valid)
	assert.False(t, v.EarningsYield.Valid)
}
