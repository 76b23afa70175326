package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Repository implements contracts.DataRepository over Postgres.
// ⭐ SSOT: 입력 데이터 조회는 여기서만
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates a data repository.
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// LoadBatch reads the most recent collected snapshot of every input table and
// assembles the per-security bundles the engine consumes.
func (r *Repository) LoadBatch(ctx context.Context) (*contracts.Batch, error) {
	date, err := r.latestCollectedDate(ctx)
	if err != nil {
		return nil, err
	}

	batch := &contracts.Batch{
		Date:       date,
		Securities: make(map[string]*contracts.SecurityData),
	}

	if err := r.loadSecurities(ctx, date, batch); err != nil {
		return nil, err
	}
	if err := r.loadQuotes(ctx, date, batch); err != nil {
		return nil, err
	}
	if err := r.loadStatements(ctx, date, batch); err != nil {
		return nil, err
	}
	if err := r.loadIndicators(ctx, date, batch); err != nil {
		return nil, err
	}
	if err := r.loadShareCounts(ctx, batch); err != nil {
		return nil, err
	}
	if err := r.loadPriceBars(ctx, batch); err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"securities": len(batch.Securities),
	}).Info("Loaded screening batch")

	return batch, nil
}

// latestCollectedDate finds the most recent collection date across quotes.
// 과거 스냅샷은 읽지 않음.
func (r *Repository) latestCollectedDate(ctx context.Context) (time.Time, error) {
	// 빈 테이블이면 MAX가 NULL
	var date *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(collected_date) FROM data.quotes`,
	).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to find latest collected date: %w", err)
	}
	if date == nil {
		return time.Time{}, &contracts.DataUnavailableError{Reason: "no collected quotes"}
	}
	return *date, nil
}

func (r *Repository) loadSecurities(ctx context.Context, date time.Time, batch *contracts.Batch) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, market, security_type
		FROM data.securities
		WHERE delisted = FALSE
		ORDER BY code
	`)
	if err != nil {
		return fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec contracts.Security
		if err := rows.Scan(&sec.Code, &sec.Name, &sec.Market, &sec.Type); err != nil {
			return fmt.Errorf("failed to scan security: %w", err)
		}
		batch.Securities[sec.Code] = &contracts.SecurityData{Security: sec}
	}
	return rows.Err()
}

func (r *Repository) loadQuotes(ctx context.Context, date time.Time, batch *contracts.Batch) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, close, market_cap, listed_shares, base_date
		FROM data.quotes
		WHERE collected_date = $1
	`, date)
	if err != nil {
		return fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q contracts.Quote
		if err := rows.Scan(&q.Code, &q.Name, &q.Close, &q.MarketCap, &q.ListedShares, &q.BaseDate); err != nil {
			return fmt.Errorf("failed to scan quote: %w", err)
		}
		if sec, ok := batch.Securities[q.Code]; ok {
			sec.Quote = q
		}
	}
	return rows.Err()
}

func (r *Repository) loadStatements(ctx context.Context, date time.Time, batch *contracts.Batch) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, account, period_end, freq, estimate, value
		FROM data.financial_statements
		WHERE collected_date = $1
	`, date)
	if err != nil {
		return fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item contracts.StatementItem
		if err := rows.Scan(&item.Code, &item.Account, &item.Period, &item.Freq, &item.Estimate, &item.Value); err != nil {
			return fmt.Errorf("failed to scan statement item: %w", err)
		}
		if sec, ok := batch.Securities[item.Code]; ok {
			sec.Statements = append(sec.Statements, item)
		}
	}
	return rows.Err()
}

func (r *Repository) loadIndicators(ctx context.Context, date time.Time, batch *contracts.Batch) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, indicator_group, account, period_end, value
		FROM data.indicators
		WHERE collected_date = $1
	`, date)
	if err != nil {
		return fmt.Errorf("failed to query indicators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var iv contracts.IndicatorValue
		if err := rows.Scan(&iv.Code, &iv.Group, &iv.Account, &iv.Period, &iv.Value); err != nil {
			return fmt.Errorf("failed to scan indicator: %w", err)
		}
		if sec, ok := batch.Securities[iv.Code]; ok {
			sec.Indicators = append(sec.Indicators, iv)
		}
	}
	return rows.Err()
}

func (r *Repository) loadShareCounts(ctx context.Context, batch *contracts.Batch) error {
	// 희석 판정에 약 1년치가 필요해서 2년 범위를 읽음
	rows, err := r.pool.Query(ctx, `
		SELECT code, record_date, outstanding, treasury, floating
		FROM data.share_counts
		WHERE record_date >= (CURRENT_DATE - INTERVAL '2 years')::text
		ORDER BY code, record_date
	`)
	if err != nil {
		return fmt.Errorf("failed to query share counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc contracts.ShareCount
		if err := rows.Scan(&sc.Code, &sc.Date, &sc.Outstanding, &sc.Treasury, &sc.Floating); err != nil {
			return fmt.Errorf("failed to scan share count: %w", err)
		}
		if sec, ok := batch.Securities[sc.Code]; ok {
			sec.Shares = append(sec.Shares, sc)
		}
	}
	return rows.Err()
}

func (r *Repository) loadPriceBars(ctx context.Context, batch *contracts.Batch) error {
	// 52주 지표 계산에 필요한 범위만 (영업일 252 ≈ 달력 370일)
	rows, err := r.pool.Query(ctx, `
		SELECT code, trade_date, open, high, low, close, volume, trading_value
		FROM data.price_history
		WHERE trade_date >= (CURRENT_DATE - INTERVAL '380 days')::text
		ORDER BY code, trade_date
	`)
	if err != nil {
		return fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bar contracts.PriceBar
		if err := rows.Scan(&bar.Code, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &bar.TradingValue); err != nil {
			return fmt.Errorf("failed to scan price bar: %w", err)
		}
		if sec, ok := batch.Securities[bar.Code]; ok {
			sec.Bars = append(sec.Bars, bar)
		}
	}
	return rows.Err()
}
