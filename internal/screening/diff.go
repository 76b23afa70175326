package screening

import (
	"github.com/wonny/kquant/internal/contracts"
)

// Diff compares strategy membership between the previous and the new
// snapshot. A nil previous snapshot reports every current member as added.
func Diff(prev, curr *contracts.Snapshot) *contracts.DiffSummary {
	summary := &contracts.DiffSummary{
		Strategies: make([]contracts.StrategyDiff, 0, len(contracts.StrategyNames)),
	}
	if curr != nil {
		summary.Date = curr.Date
	}

	for _, name := range contracts.StrategyNames {
		prevMembers := toSet(prev.Members(name))
		currMembers := toSet(curr.Members(name))

		d := contracts.StrategyDiff{Strategy: name}
		for _, code := range curr.Members(name) {
			if !prevMembers[code] {
				d.Added = append(d.Added, code)
			}
		}
		for _, code := range prev.Members(name) {
			if !currMembers[code] {
				d.Removed = append(d.Removed, code)
			}
		}
		summary.Strategies = append(summary.Strategies, d)
	}

	return summary
}

func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}
