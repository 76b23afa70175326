package features

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/kquant/internal/contracts"
)

// Series holds one account's values keyed by ISO period-end date.
// ISO 날짜 문자열은 사전순 정렬 = 시간순 정렬.
type Series map[string]float64

// Abs returns a copy with every value replaced by its absolute value.
// FnGuide는 CAPEX 같은 유출 항목을 음수로 기재함.
func (s Series) Abs() Series {
	out := make(Series, len(s))
	for d, v := range s {
		out[d] = math.Abs(v)
	}
	return out
}

// Scale returns a copy with every value multiplied by m.
func (s Series) Scale(m float64) Series {
	if m == 1 {
		return s
	}
	out := make(Series, len(s))
	for d, v := range s {
		out[d] = v * m
	}
	return out
}

// Dates returns the period-end dates in ascending order.
func (s Series) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Latest returns the most recent value.
func (s Series) Latest() (contracts.Value, string) {
	if len(s) == 0 {
		return contracts.None(), ""
	}
	dates := s.Dates()
	last := dates[len(dates)-1]
	return contracts.Some(s[last]), last
}

// lastTwo returns the two most recent values in (prev, curr) order.
func (s Series) lastTwo() (prev, curr float64, ok bool) {
	if len(s) < 2 {
		return 0, 0, false
	}
	dates := s.Dates()
	return s[dates[len(dates)-2]], s[dates[len(dates)-1]], true
}

// CAGR computes the compound annual growth rate in % per year.
// Undefined when either endpoint is non-positive, fewer than two periods
// exist, or the span is shorter than half a year.
func (s Series) CAGR() contracts.Value {
	if len(s) < 2 {
		return contracts.None()
	}
	dates := s.Dates()
	first, last := dates[0], dates[len(dates)-1]
	v0, v1 := s[first], s[last]
	if v0 <= 0 || v1 <= 0 {
		return contracts.None()
	}

	t0, err0 := time.Parse("2006-01-02", first)
	t1, err1 := time.Parse("2006-01-02", last)
	if err0 != nil || err1 != nil {
		return contracts.None()
	}
	years := t1.Sub(t0).Hours() / 24 / 365.25
	if years < 0.5 {
		return contracts.None()
	}

	return contracts.Some((math.Pow(v1/v0, 1/years) - 1) * 100)
}

// GrowthStreak counts the trailing run of periods where each value exceeds a
// positive prior value. Truncates at the first non-increase or non-positive
// base year.
func (s Series) GrowthStreak() int {
	if len(s) < 2 {
		return 0
	}
	dates := s.Dates()
	count := 0
	for i := len(dates) - 1; i > 0; i-- {
		curr, prev := s[dates[i]], s[dates[i-1]]
		if curr > prev && prev > 0 {
			count++
		} else {
			break
		}
	}
	return count
}

// annualOnly keeps fiscal-year-end (12-31) periods.
func (s Series) annualOnly() Series {
	out := make(Series, len(s))
	for d, v := range s {
		if strings.HasSuffix(d, "12-31") {
			out[d] = v
		}
	}
	return out
}

// prevYearDate shifts a period-end date back one year, e.g.
// "2024-09-30" -> "2023-09-30".
func prevYearDate(date string) (string, bool) {
	if len(date) < 5 {
		return "", false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return "", false
	}
	return strconv.Itoa(year-1) + date[4:], true
}

// YoYSeries computes per-period year-over-year growth in %. A period whose
// prior-year comparator is missing or non-positive has no entry.
func (s Series) YoYSeries() Series {
	yoy := make(Series)
	for _, d := range s.Dates() {
		prevDate, ok := prevYearDate(d)
		if !ok {
			continue
		}
		prev, exists := s[prevDate]
		if !exists || prev <= 0 {
			continue
		}
		yoy[d] = (s[d]/prev - 1) * 100
	}
	return yoy
}

// YoYStreak counts the trailing run of periods whose year-over-year growth
// is strictly positive. 전년 동기 비교가 불가능한 분기는 연속을 끊는다.
func (s Series) YoYStreak() int {
	dates := s.Dates()
	count := 0
	for i := len(dates) - 1; i >= 0; i-- {
		prevDate, ok := prevYearDate(dates[i])
		if !ok {
			break
		}
		prev, exists := s[prevDate]
		if !exists || prev <= 0 {
			break
		}
		if s[dates[i]] <= prev {
			break
		}
		count++
	}
	return count
}
