package contracts

import "time"

// Market segments
const (
	MarketKOSPI  = "KOSPI"
	MarketKOSDAQ = "KOSDAQ"
)

// Security types. Only ordinary equities are screened.
const (
	TypeOrdinary  = "ordinary"
	TypePreferred = "preferred"
	TypeOther     = "other"
)

// Statement frequencies
const (
	FreqAnnual    = "y"
	FreqQuarterly = "q"
)

// Indicator groups
const (
	GroupRatioAnnual    = "RATIO_Y"
	GroupRatioQuarterly = "RATIO_Q"
	GroupDPS            = "DPS"
)

// Security identifies one listed equity.
// 종목코드는 6자리 zero-padded.
type Security struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Type   string `json:"type"`
}

// Quote is the latest daily snapshot of price, market cap and listed shares.
type Quote struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Close        float64 `json:"close"`
	MarketCap    float64 `json:"market_cap"`
	ListedShares float64 `json:"listed_shares"`
	BaseDate     string  `json:"base_date"`
}

// StatementItem is one financial-statement line item.
// 동일 (종목, 계정, 기준일, 주기)에 대해 실적치/추정치 각 1건 이하.
type StatementItem struct {
	Code     string  `json:"code"`
	Account  string  `json:"account"`
	Period   string  `json:"period"` // period-end date, "2006-01-02"
	Freq     string  `json:"freq"`   // FreqAnnual | FreqQuarterly
	Estimate bool    `json:"estimate"`
	Value    float64 `json:"value"`
}

// IndicatorValue is one ratio/indicator snapshot sourced independently of
// statement line items.
type IndicatorValue struct {
	Code    string  `json:"code"`
	Group   string  `json:"group"` // GroupRatioAnnual | GroupRatioQuarterly | GroupDPS
	Account string  `json:"account"`
	Period  string  `json:"period"`
	Value   float64 `json:"value"`
}

// ShareCount is a per-date share structure snapshot.
type ShareCount struct {
	Code        string `json:"code"`
	Date        string `json:"date"`
	Outstanding int64  `json:"outstanding"`
	Treasury    int64  `json:"treasury"`
	Floating    int64  `json:"floating"`
}

// PriceBar is one daily OHLCV bar with trading value.
type PriceBar struct {
	Code         string  `json:"code"`
	Date         string  `json:"date"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       float64 `json:"volume"`
	TradingValue float64 `json:"trading_value"`
}

// SecurityData bundles every input the engine needs for one security.
type SecurityData struct {
	Security   Security
	Quote      Quote
	Statements []StatementItem
	Indicators []IndicatorValue
	Shares     []ShareCount
	Bars       []PriceBar
}

// Batch is the full engine input for one screening run.
type Batch struct {
	Date       time.Time
	Securities map[string]*SecurityData
}
