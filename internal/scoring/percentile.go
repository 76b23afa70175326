package scoring

import (
	"context"
	"sort"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Scorer normalizes every registered metric to a [0, 100] score over the
// whole universe and writes it into each row's Percentiles map.
// ⭐ SSOT: 백분위 정규화는 여기서만. 전략은 이 테이블만 읽음.
type Scorer struct {
	metrics []MetricDef
	logger  *logger.Logger
}

// NewScorer creates a scorer over the default metric registry.
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		metrics: Registry(),
		logger:  log,
	}
}

// Score fills Percentiles for every row. Percentile metrics rank only the
// defined population; undefined values stay undefined rather than becoming 0.
func (s *Scorer) Score(ctx context.Context, rows map[string]*contracts.DashboardRow) error {
	for _, row := range rows {
		if row.Percentiles == nil {
			row.Percentiles = make(map[string]contracts.Value, len(s.metrics))
		}
	}

	for _, m := range s.metrics {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch m.Kind {
		case KindPercentile:
			s.scorePercentile(m, rows)
		case KindScaled:
			s.scoreScaled(m, rows)
		case KindFlag:
			s.scoreFlag(m, rows)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"metrics": len(s.metrics),
	}).Info("Normalized metric scores")

	return nil
}

type rankedValue struct {
	code string
	raw  float64
}

func (s *Scorer) scorePercentile(m MetricDef, rows map[string]*contracts.DashboardRow) {
	population := make([]rankedValue, 0, len(rows))
	for code, row := range rows {
		v := m.Extract(row)
		if !v.Valid {
			row.Percentiles[m.ID] = contracts.None()
			continue
		}
		population = append(population, rankedValue{code: code, raw: v.Float})
	}

	for code, pct := range averageRankPercentiles(population) {
		if m.LowIsBetter {
			pct = 100 - pct
		}
		rows[code].Percentiles[m.ID] = contracts.Some(pct)
	}
}

func (s *Scorer) scoreScaled(m MetricDef, rows map[string]*contracts.DashboardRow) {
	for _, row := range rows {
		v := m.Extract(row)
		if !v.Valid {
			row.Percentiles[m.ID] = contracts.None()
			continue
		}
		raw := v.Float
		if raw < 0 {
			raw = 0
		}
		if raw > m.Cap {
			raw = m.Cap
		}
		row.Percentiles[m.ID] = contracts.Some(raw / m.Cap * 100)
	}
}

func (s *Scorer) scoreFlag(m MetricDef, rows map[string]*contracts.DashboardRow) {
	for _, row := range rows {
		v := m.Extract(row)
		if !v.Valid {
			row.Percentiles[m.ID] = contracts.None()
			continue
		}
		if v.Float != 0 {
			row.Percentiles[m.ID] = contracts.Some(100)
		} else {
			row.Percentiles[m.ID] = contracts.Some(0)
		}
	}
}

// averageRankPercentiles maps each code to (avgRank-1)/(n-1)*100 where ties
// share the average of their rank positions. A single defined value maps to
// the neutral 50.
func averageRankPercentiles(population []rankedValue) map[string]float64 {
	n := len(population)
	out := make(map[string]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[population[0].code] = 50
		return out
	}

	sorted := make([]rankedValue, n)
	copy(sorted, population)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].raw != sorted[j].raw {
			return sorted[i].raw < sorted[j].raw
		}
		// 동순위 안정성: 코드로 2차 정렬해도 평균 순위는 동일
		return sorted[i].code < sorted[j].code
	})

	i := 0
	for i < n {
		j := i
		for j+1 < n && sorted[j+1].raw == sorted[i].raw {
			j++
		}
		// 1-based ranks i+1..j+1 share the average rank
		avgRank := float64(i+j+2) / 2
		pct := (avgRank - 1) / float64(n-1) * 100
		for k := i; k <= j; k++ {
			out[sorted[k].code] = pct
		}
		i = j + 1
	}
	return out
}
