package contracts

import (
	"sort"
	"time"
)

// Strategy names
const (
	StrategyQuality        = "quality"
	StrategyMomentum       = "momentum"
	StrategyGARP           = "garp"
	StrategyCashcow        = "cashcow"
	StrategyTurnaround     = "turnaround"
	StrategyDividendGrowth = "dividend_growth"
)

// StrategyNames lists all strategies in a fixed order.
var StrategyNames = []string{
	StrategyQuality,
	StrategyMomentum,
	StrategyGARP,
	StrategyCashcow,
	StrategyTurnaround,
	StrategyDividendGrowth,
}

// StrategyResult is one strategy's verdict for one security.
type StrategyResult struct {
	Member bool  `json:"member"`
	Score  Value `json:"score"`
	// Failed predicate names, for auditability. Empty for members.
	Failed []string `json:"failed,omitempty"`
}

// DashboardRow is the full materialized feature vector for one security.
type DashboardRow struct {
	Security    Security            `json:"security"`
	Quote       Quote               `json:"quote"`
	Fundamental FundamentalFeatures `json:"fundamental"`
	Valuation   ValuationFeatures   `json:"valuation"`
	Technical   TechnicalFeatures   `json:"technical"`

	// Percentiles keyed by metric ID, each in [0, 100].
	Percentiles map[string]Value `json:"percentiles"`

	Strategies map[string]StrategyResult `json:"strategies"`

	// Universe-wide weighted composite, Quality-style weighting.
	CompositeScore Value `json:"composite_score"`
}

// Snapshot is one materialized result table tagged with a computation date.
type Snapshot struct {
	Date time.Time                `json:"date"`
	Rows map[string]*DashboardRow `json:"rows"`
}

// Members returns the sorted member codes of a strategy.
func (s *Snapshot) Members(strategy string) []string {
	if s == nil {
		return nil
	}
	codes := make([]string, 0)
	for code, row := range s.Rows {
		if sr, ok := row.Strategies[strategy]; ok && sr.Member {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// StrategyDiff reports membership changes for one strategy between two
// snapshots.
type StrategyDiff struct {
	Strategy string   `json:"strategy"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
}

// DiffSummary reports all membership changes of one materialization.
type DiffSummary struct {
	Date       time.Time      `json:"date"`
	Strategies []StrategyDiff `json:"strategies"`
}
