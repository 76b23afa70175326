package features

import (
	"context"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Cost of equity for the residual-income fair value, in %.
const srimCostOfEquity = 8.0

// PER outside this band is flagged anomalous and excluded from ranking.
const (
	perAnomalyLow  = 0.5
	perAnomalyHigh = 500.0
)

// ValuationCalculator derives price-relative ratios and the S-RIM fair value
// from the quote and the fundamental feature vector.
// ⭐ SSOT: 밸류에이션 비율 계산은 여기서만
type ValuationCalculator struct {
	logger *logger.Logger
}

// NewValuationCalculator creates a valuation calculator.
func NewValuationCalculator(log *logger.Logger) *ValuationCalculator {
	return &ValuationCalculator{logger: log}
}

// Calculate computes the valuation feature vector. Market cap and close come
// from the latest quote; flow figures come from the fundamental aggregates.
func (c *ValuationCalculator) Calculate(ctx context.Context, code string, data *contracts.SecurityData, fund contracts.FundamentalFeatures) (contracts.ValuationFeatures, error) {
	var v contracts.ValuationFeatures

	mcap := data.Quote.MarketCap
	close := data.Quote.Close
	shares := data.Quote.ListedShares

	if mcap > 0 {
		if fund.TTMNetIncome.Positive() {
			v.PER = contracts.Some(mcap / fund.TTMNetIncome.Float)
		}
		if fund.Equity.Positive() {
			v.PBR = contracts.Some(mcap / fund.Equity.Float)
		}
		if fund.TTMRevenue.Positive() {
			v.PSR = contracts.Some(mcap / fund.TTMRevenue.Float)
		}
		if fund.TTMNetIncome.Valid {
			v.EarningsYield = contracts.Some(fund.TTMNetIncome.Float / mcap * 100)
		}
		if fund.TTMFreeCashFlow.Valid {
			v.FCFYield = contracts.Some(fund.TTMFreeCashFlow.Float / mcap * 100)
		}
	}

	v.PERAnomalous = v.PER.Valid && (v.PER.Float < perAnomalyLow || v.PER.Float > perAnomalyHigh)

	if v.PER.Valid && fund.NetIncomeCAGR.Positive() {
		v.PEG = contracts.Some(v.PER.Float / fund.NetIncomeCAGR.Float)
	}

	if shares > 0 {
		if fund.TTMNetIncome.Valid {
			v.EPS = contracts.Some(fund.TTMNetIncome.Float / shares)
		}
		if fund.Equity.Valid {
			v.BPS = contracts.Some(fund.Equity.Float / shares)
		}
	}

	if fund.Equity.Positive() {
		if fund.TTMNetIncome.Valid {
			v.ROE = contracts.Some(fund.TTMNetIncome.Float / fund.Equity.Float * 100)
		}
		if fund.Debt.Valid {
			v.DebtRatio = contracts.Some(fund.Debt.Float / fund.Equity.Float * 100)
		}
	}

	// 배당 기록이 없으면 수익률 0, 주가가 없으면 미정의
	if close > 0 {
		v.DividendYield = contracts.Some(fund.LatestDPS.Or(0) / close * 100)
	}

	if fund.TTMNetIncome.Positive() && fund.TTMOperatingCashFlow.Valid {
		v.CashConversion = contracts.Some(fund.TTMOperatingCashFlow.Float / fund.TTMNetIncome.Float * 100)
	}
	if fund.TTMOperatingCashFlow.Positive() && fund.TTMCapex.Valid {
		v.CapexRatio = contracts.Some(fund.TTMCapex.Float / fund.TTMOperatingCashFlow.Float * 100)
	}
	if fund.Debt.Positive() && fund.TTMOperatingCashFlow.Valid {
		v.DebtCoverage = contracts.Some(fund.TTMOperatingCashFlow.Float / fund.Debt.Float)
	}
	v.EarningsQuality = fund.TTMOperatingCashFlow.Valid && fund.TTMNetIncome.Valid &&
		fund.TTMOperatingCashFlow.Float > fund.TTMNetIncome.Float

	v.FairValueSRIM = c.srim(v.BPS, v.ROE)
	if v.FairValueSRIM.Valid && close > 0 {
		v.SRIMDeviation = contracts.Some((v.FairValueSRIM.Float - close) / close * 100)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": code,
		"per":  v.PER.Or(0),
		"pbr":  v.PBR.Or(0),
		"roe":  v.ROE.Or(0),
	}).Debug("Calculated valuation features")

	return v, nil
}

// srim computes the residual-income fair value.
//
//	ROE > Ke : BPS + BPS*(ROE-Ke)/Ke  (초과이익 영구 유지 가정)
//	otherwise: BPS * 0.9
func (c *ValuationCalculator) srim(bps, roe contracts.Value) contracts.Value {
	if !bps.Positive() {
		return contracts.None()
	}
	if roe.Valid && roe.Float > srimCostOfEquity {
		excess := (roe.Float - srimCostOfEquity) / srimCostOfEquity
		return contracts.Some(bps.Float + bps.Float*excess)
	}
	return contracts.Some(bps.Float * 0.9)
}
