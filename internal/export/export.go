package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Exporter writes strategy member lists as CSV files and console tables.
// ⭐ SSOT: 결과 내보내기는 여기서만
type Exporter struct {
	dir    string
	logger *logger.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string, log *logger.Logger) *Exporter {
	return &Exporter{dir: dir, logger: log}
}

// ExportAll writes one CSV per strategy and returns the file paths.
func (e *Exporter) ExportAll(snap *contracts.Snapshot) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	date := snap.Date.Format("2006-01-02")
	paths := make([]string, 0, len(contracts.StrategyNames))

	for _, name := range contracts.StrategyNames {
		path := filepath.Join(e.dir, fmt.Sprintf("%s_%s.csv", name, date))
		if err := e.writeCSV(snap, name, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":  date,
		"files": len(paths),
	}).Info("Exported strategy CSV files")

	return paths, nil
}

func (e *Exporter) writeCSV(snap *contracts.Snapshot, strategy, path string) error {
	if err := os.WriteFile(path, []byte(RenderCSV(snap, strategy)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RenderCSV returns one strategy's member list in CSV form. 파일 내보내기와
// API 다운로드가 같은 포맷을 쓴다.
func RenderCSV(snap *contracts.Snapshot, strategy string) string {
	return buildTable(snap, strategy).RenderCSV() + "\n"
}

// RenderTable returns the strategy member list as a console table.
func (e *Exporter) RenderTable(snap *contracts.Snapshot, strategy string) string {
	return buildTable(snap, strategy).Render()
}

func buildTable(snap *contracts.Snapshot, strategy string) table.Writer {
	t := table.NewWriter()
	t.SetTitle("%s (%s)", strategy, snap.Date.Format("2006-01-02"))
	t.AppendHeader(table.Row{
		"코드", "종목명", "시장", "종가", "시총(억)",
		"PER", "PBR", "ROE(%)", "F", "전략점수", "종합점수",
	})

	members := membersByScore(snap, strategy)
	for _, row := range members {
		sr := row.Strategies[strategy]
		t.AppendRow(table.Row{
			row.Security.Code,
			row.Security.Name,
			row.Security.Market,
			fmt.Sprintf("%.0f", row.Quote.Close),
			fmt.Sprintf("%.0f", row.Quote.MarketCap/1e8),
			formatValue(row.Valuation.PER, "%.1f"),
			formatValue(row.Valuation.PBR, "%.2f"),
			formatValue(row.Valuation.ROE, "%.1f"),
			row.Fundamental.FScore,
			formatValue(sr.Score, "%.1f"),
			formatValue(row.CompositeScore, "%.1f"),
		})
	}

	return t
}

// membersByScore returns member rows, best strategy score first.
func membersByScore(snap *contracts.Snapshot, strategy string) []*contracts.DashboardRow {
	rows := make([]*contracts.DashboardRow, 0)
	for _, code := range snap.Members(strategy) {
		rows = append(rows, snap.Rows[code])
	}
	// Members()가 코드순이므로 점수순으로 재정렬
	sort.SliceStable(rows, func(i, j int) bool {
		a := rows[i].Strategies[strategy].Score
		b := rows[j].Strategies[strategy].Score
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Float > b.Float
	})
	return rows
}

func formatValue(v contracts.Value, format string) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf(format, v.Float)
}
