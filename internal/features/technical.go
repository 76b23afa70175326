package features

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

const (
	rsiPeriod        = 14
	week52Window     = 252
	volatilityWindow = 60
	tradingDaysYear  = 252.0
)

// TechnicalCalculator computes price-action features from daily bars.
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type TechnicalCalculator struct {
	logger *logger.Logger
}

// NewTechnicalCalculator creates a technical calculator.
func NewTechnicalCalculator(log *logger.Logger) *TechnicalCalculator {
	return &TechnicalCalculator{logger: log}
}

// Calculate computes the technical feature vector. Bars may arrive in any
// order; each window requires its own minimum history and is undefined
// otherwise.
func (c *TechnicalCalculator) Calculate(ctx context.Context, code string, bars []contracts.PriceBar) (contracts.TechnicalFeatures, error) {
	var t contracts.TechnicalFeatures
	if len(bars) == 0 {
		return t, nil
	}

	sorted := make([]contracts.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	closes := make([]float64, len(sorted))
	values := make([]float64, len(sorted))
	highs := make([]float64, len(sorted))
	lows := make([]float64, len(sorted))
	for i, b := range sorted {
		closes[i] = b.Close
		values[i] = b.TradingValue
		// 고가/저가 결측 시 종가로 대체
		highs[i], lows[i] = b.High, b.Low
		if highs[i] <= 0 {
			highs[i] = b.Close
		}
		if lows[i] <= 0 {
			lows[i] = b.Close
		}
	}
	last := closes[len(closes)-1]
	if last <= 0 {
		return t, nil
	}

	// 52주 고가/저가 괴리: 장중 고가/저가 기준
	start := 0
	if len(sorted) > week52Window {
		start = len(sorted) - week52Window
	}
	high, low := highs[start], lows[start]
	for i := start; i < len(sorted); i++ {
		if highs[i] > high {
			high = highs[i]
		}
		if lows[i] < low {
			low = lows[i]
		}
	}
	if high > 0 {
		t.PctOff52wHigh = contracts.Some((last - high) / high * 100)
	}
	if low > 0 {
		t.PctOff52wLow = contracts.Some((last - low) / low * 100)
	}

	t.MA20Deviation = maDeviation(closes, 20, last)
	t.MA60Deviation = maDeviation(closes, 60, last)

	t.RSI14 = wilderRSI(closes, rsiPeriod)

	if avg20, ok := tailMean(values, 20); ok {
		t.AvgTradingValue20 = contracts.Some(avg20)
		if avg5, ok2 := tailMean(values, 5); ok2 && avg20 > 0 {
			t.TradingValueChange = contracts.Some((avg5/avg20 - 1) * 100)
		}
	}

	t.Volatility60 = annualizedVolatility(closes, volatilityWindow)

	c.logger.WithFields(map[string]interface{}{
		"code": code,
		"bars": len(sorted),
		"rsi":  t.RSI14.Or(0),
	}).Debug("Calculated technical features")

	return t, nil
}

func maDeviation(closes []float64, period int, last float64) contracts.Value {
	avg, ok := tailMean(closes, period)
	if !ok || avg <= 0 {
		return contracts.None()
	}
	return contracts.Some((last - avg) / avg * 100)
}

func tailMean(xs []float64, n int) (float64, bool) {
	if len(xs) < n {
		return 0, false
	}
	var sum float64
	for _, x := range xs[len(xs)-n:] {
		sum += x
	}
	return sum / float64(n), true
}

// wilderRSI computes RSI with Wilder smoothing over the full history.
// period+1 종가 미만이면 미정의.
func wilderRSI(closes []float64, period int) contracts.Value {
	if len(closes) < period+1 {
		return contracts.None()
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss += -change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if change > 0 {
			g = change
		} else {
			l = -change
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}

	// 변동이 전혀 없으면 중립
	if avgGain == 0 && avgLoss == 0 {
		return contracts.Some(50)
	}
	if avgLoss == 0 {
		return contracts.Some(100)
	}
	rs := avgGain / avgLoss
	return contracts.Some(100 - 100/(1+rs))
}

// annualizedVolatility is the stddev of the last `window` daily returns,
// annualized by sqrt(252), in %.
func annualizedVolatility(closes []float64, window int) contracts.Value {
	if len(closes) < window+1 {
		return contracts.None()
	}
	tail := closes[len(closes)-window-1:]
	returns := make([]float64, 0, window)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] <= 0 {
			return contracts.None()
		}
		returns = append(returns, tail[i]/tail[i-1]-1)
	}
	sd := stat.StdDev(returns, nil)
	return contracts.Some(sd * math.Sqrt(tradingDaysYear) * 100)
}
