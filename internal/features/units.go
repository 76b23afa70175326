package features

import (
	"context"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// DefaultReferenceCode is the unit-calibration security (삼성전자).
const DefaultReferenceCode = "005930"

// UnitNormalizer infers the statement unit of the whole batch from a single
// reference security whose revenue magnitude is known a priori.
// ⭐ SSOT: 재무제표 단위 판정은 여기서만
type UnitNormalizer struct {
	referenceCode string
	logger        *logger.Logger
}

// NewUnitNormalizer creates a unit normalizer. An empty referenceCode falls
// back to DefaultReferenceCode.
func NewUnitNormalizer(referenceCode string, log *logger.Logger) *UnitNormalizer {
	if referenceCode == "" {
		referenceCode = DefaultReferenceCode
	}
	return &UnitNormalizer{
		referenceCode: referenceCode,
		logger:        log,
	}
}

// Multiplier returns the factor that converts raw statement values to KRW.
//
// 기준: 삼성전자 연매출 ≈ 3e14 KRW.
//   - raw > 1e14 : already KRW        -> 1
//   - raw > 1e8  : millions of KRW    -> 1e6
//   - otherwise  : 억원                -> 1e8
//
// The whole run aborts with DataUnavailableError when the reference revenue
// cannot be found, because every absolute figure downstream would be wrong.
func (u *UnitNormalizer) Multiplier(ctx context.Context, batch *contracts.Batch) (float64, error) {
	ref, ok := batch.Securities[u.referenceCode]
	if !ok {
		return 0, &contracts.DataUnavailableError{
			Reason: "reference security " + u.referenceCode + " not in batch",
		}
	}

	revenue := statementSeries(ref.Statements, contracts.FreqAnnual, accRevenue)
	latest, period := revenue.Latest()
	if !latest.Valid || latest.Float <= 0 {
		return 0, &contracts.DataUnavailableError{
			Reason: "no annual revenue for reference security " + u.referenceCode,
		}
	}

	var multiplier float64
	switch {
	case latest.Float > 1e14:
		multiplier = 1
	case latest.Float > 1e8:
		multiplier = 1e6
	default:
		multiplier = 1e8
	}

	u.logger.WithFields(map[string]interface{}{
		"reference":  u.referenceCode,
		"period":     period,
		"revenue":    latest.Float,
		"multiplier": multiplier,
	}).Info("Detected statement unit multiplier")

	return multiplier, nil
}
