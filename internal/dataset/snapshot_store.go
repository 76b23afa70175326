package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// SnapshotStore implements the two-slot snapshot store over Postgres.
// current/previous 두 테이블만 유지하고, Rotate가 한 트랜잭션 안에서 교체함.
// ⭐ SSOT: 스냅샷 영속화는 여기서만
type SnapshotStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewSnapshotStore creates a snapshot store.
func NewSnapshotStore(pool *pgxpool.Pool, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{pool: pool, logger: log}
}

// Current returns the current snapshot, nil when none was published yet.
func (s *SnapshotStore) Current(ctx context.Context) (*contracts.Snapshot, error) {
	return s.load(ctx, "screening.dashboard_current")
}

// Previous returns the snapshot before the current one.
func (s *SnapshotStore) Previous(ctx context.Context) (*contracts.Snapshot, error) {
	return s.load(ctx, "screening.dashboard_previous")
}

func (s *SnapshotStore) load(ctx context.Context, table string) (*contracts.Snapshot, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT snapshot_date, code, payload
		FROM %s
		ORDER BY code
	`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var snap *contracts.Snapshot
	for rows.Next() {
		var date time.Time
		var code string
		var payload []byte
		if err := rows.Scan(&date, &code, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		if snap == nil {
			snap = &contracts.Snapshot{
				Date: date,
				Rows: make(map[string]*contracts.DashboardRow),
			}
		}

		var row contracts.DashboardRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dashboard row %s: %w", code, err)
		}
		snap.Rows[code] = &row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}

	return snap, nil
}

// Rotate atomically shifts current to previous and installs snap as current.
// 중간 상태가 보이지 않도록 전체가 한 트랜잭션임.
func (s *SnapshotStore) Rotate(ctx context.Context, snap *contracts.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM screening.dashboard_previous`); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO screening.dashboard_previous (snapshot_date, code, payload)
		SELECT snapshot_date, code, payload FROM screening.dashboard_current
	`); err != nil {
		return fmt.Errorf("failed to demote current snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM screening.dashboard_current`); err != nil {
		return fmt.Errorf("failed to clear current snapshot: %w", err)
	}

	if err := s.copyRows(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot rotation: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"date": snap.Date.Format("2006-01-02"),
		"rows": len(snap.Rows),
	}).Info("Rotated dashboard snapshot")

	return nil
}

func (s *SnapshotStore) copyRows(ctx context.Context, tx pgx.Tx, snap *contracts.Snapshot) error {
	source := make([][]interface{}, 0, len(snap.Rows))
	for code, row := range snap.Rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal dashboard row %s: %w", code, err)
		}
		source = append(source, []interface{}{snap.Date, code, payload})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"screening", "dashboard_current"},
		[]string{"snapshot_date", "code", "payload"},
		pgx.CopyFromRows(source),
	)
	if err != nil {
		return fmt.Errorf("failed to copy snapshot rows: %w", err)
	}
	return nil
}
