package features

import (
	"strings"

	"github.com/wonny/kquant/internal/contracts"
)

// Logical account keys used by the aggregator.
const (
	accRevenue            = "revenue"
	accOperatingIncome    = "operating_income"
	accNetIncome          = "net_income"
	accEquity             = "equity"
	accDebt               = "debt"
	accDPS                = "dps"
	accOperatingCashFlow  = "operating_cash_flow"
	accCapex              = "capex"
	accTotalAssets        = "total_assets"
	accCurrentAssets      = "current_assets"
	accCurrentLiabilities = "current_liabilities"
	accGrossProfit        = "gross_profit"
)

// accountAliases maps logical keys onto the raw Korean account names the
// upstream sources publish. 업종별로 매출액 대신 영업수익/이자수익 등이 옴.
var accountAliases = map[string][]string{
	accRevenue:            {"매출액", "영업수익", "이자수익", "보험료수익", "순영업수익"},
	accOperatingIncome:    {"영업이익"},
	accNetIncome:          {"지배주주순이익", "당기순이익"},
	accEquity:             {"자본", "자본총계", "지배주주지분", "지배기업주주지분"},
	accDebt:               {"부채", "부채총계"},
	accDPS:                {"주당배당금"},
	accOperatingCashFlow:  {"영업활동현금흐름", "영업활동으로인한현금흐름"},
	accCapex:              {"유형자산의취득", "유형자산취득"},
	accTotalAssets:        {"자산총계", "자산"},
	accCurrentAssets:      {"유동자산"},
	accCurrentLiabilities: {"유동부채"},
	accGrossProfit:        {"매출총이익"},
}

// Derived/ratio rows that must never be mistaken for absolute figures when
// prefix-matching account names.
var excludeKeywords = []string{
	"증가율", "(-1Y)", "(평균)", "률(", "비율", "배율", "(-1A", "(-1Q", "/ 수정평균",
}

func excludedAccount(name string) bool {
	for _, kw := range excludeKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func prefixMatch(name string, targets []string) bool {
	for _, t := range targets {
		if strings.HasPrefix(name, t) && !excludedAccount(name) {
			return true
		}
	}
	return false
}

// indicatorSeries extracts one account's time series from indicator rows of
// the given group. Exact account names win; prefix matches are a fallback
// used only when no exact name matched at all.
func indicatorSeries(ind []contracts.IndicatorValue, group, key string) Series {
	targets, ok := accountAliases[key]
	if !ok {
		targets = []string{key}
	}

	exact := make(Series)
	prefix := make(Series)
	for _, iv := range ind {
		if iv.Group != group {
			continue
		}
		if containsString(targets, iv.Account) {
			if _, dup := exact[iv.Period]; !dup {
				exact[iv.Period] = iv.Value
			}
			continue
		}
		if prefixMatch(iv.Account, targets) {
			if _, dup := prefix[iv.Period]; !dup {
				prefix[iv.Period] = iv.Value
			}
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return prefix
}

// statementSeries extracts one account's non-estimate time series from
// statement line items of the given frequency. 추정치는 TTM/성장 계산에서 제외.
func statementSeries(items []contracts.StatementItem, freq, key string) Series {
	targets, ok := accountAliases[key]
	if !ok {
		targets = []string{key}
	}

	exact := make(Series)
	prefix := make(Series)
	for _, it := range items {
		if it.Freq != freq || it.Estimate {
			continue
		}
		if containsString(targets, it.Account) {
			if _, dup := exact[it.Period]; !dup {
				exact[it.Period] = it.Value
			}
			continue
		}
		if prefixMatch(it.Account, targets) {
			if _, dup := prefix[it.Period]; !dup {
				prefix[it.Period] = it.Value
			}
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return prefix
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
