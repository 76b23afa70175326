package scoring

import (
	"context"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Market-cap admission floors (KRW).
const (
	mcapFloorLarge = 50_000_000_000 // 시총 500억
	mcapFloorSmall = 30_000_000_000 // 시총 300억
)

// Condition is one named admission predicate.
// 조건 실패 시 Name이 StrategyResult.Failed에 기록됨.
type Condition struct {
	Name string
	Test func(*contracts.DashboardRow) bool
}

// WeightTerm is one weighted score term. Metric refers to the normalized
// [0, 100] score table; Invert uses 100-score, for strategies that prefer the
// opposite end of an already-oriented metric (e.g. 과매도 선호).
type WeightTerm struct {
	Metric string
	Weight float64
	Invert bool
}

// Strategy is a declarative screen: every All condition and at least one Any
// condition must hold, then the score is the weighted sum of normalized
// metric scores. Undefined terms contribute nothing.
type Strategy struct {
	Name    string
	All     []Condition
	Any     []Condition
	Weights []WeightTerm
}

// Evaluator applies strategies to scored rows.
type Evaluator struct {
	strategies []Strategy
	composite  []WeightTerm
	logger     *logger.Logger
}

// NewEvaluator creates an evaluator over the given strategies. The composite
// weighting scores every security regardless of admission.
func NewEvaluator(strategies []Strategy, composite []WeightTerm, log *logger.Logger) *Evaluator {
	return &Evaluator{
		strategies: strategies,
		composite:  composite,
		logger:     log,
	}
}

// Evaluate fills Strategies and CompositeScore for every row. Rows must
// already carry their normalized score table.
func (e *Evaluator) Evaluate(ctx context.Context, rows map[string]*contracts.DashboardRow) error {
	counts := make(map[string]int, len(e.strategies))

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if row.Strategies == nil {
			row.Strategies = make(map[string]contracts.StrategyResult, len(e.strategies))
		}

		for _, st := range e.strategies {
			result := e.evaluateOne(st, row)
			row.Strategies[st.Name] = result
			if result.Member {
				counts[st.Name]++
			}
		}

		row.CompositeScore = weightedScore(e.composite, row)
	}

	e.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"members": counts,
	}).Info("Evaluated strategies")

	return nil
}

func (e *Evaluator) evaluateOne(st Strategy, row *contracts.DashboardRow) contracts.StrategyResult {
	var failed []string

	for _, c := range st.All {
		if !c.Test(row) {
			failed = append(failed, c.Name)
		}
	}
	if len(st.Any) > 0 {
		anyPass := false
		for _, c := range st.Any {
			if c.Test(row) {
				anyPass = true
				break
			}
		}
		if !anyPass {
			names := ""
			for i, c := range st.Any {
				if i > 0 {
					names += "|"
				}
				names += c.Name
			}
			failed = append(failed, names)
		}
	}

	if len(failed) > 0 {
		return contracts.StrategyResult{Member: false, Failed: failed}
	}

	return contracts.StrategyResult{
		Member: true,
		Score:  weightedScore(st.Weights, row),
	}
}

// weightedScore sums weight*score over the defined terms. 전 항목 미정의면
// 점수 자체가 미정의.
func weightedScore(terms []WeightTerm, row *contracts.DashboardRow) contracts.Value {
	var sum float64
	defined := false
	for _, t := range terms {
		v, ok := row.Percentiles[t.Metric]
		if !ok || !v.Valid {
			continue
		}
		score := v.Float
		if t.Invert {
			score = 100 - score
		}
		sum += score * t.Weight
		defined = true
	}
	if !defined {
		return contracts.None()
	}
	return contracts.Some(sum)
}
