package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/config"
	"github.com/wonny/kquant/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func exportSnapshot() *contracts.Snapshot {
	row := func(code string, score float64) *contracts.DashboardRow {
		return &contracts.DashboardRow{
			Security: contracts.Security{Code: code, Name: "종목" + code, Market: contracts.MarketKOSPI},
			Quote:    contracts.Quote{Close: 25000, MarketCap: 120_000_000_000},
			Valuation: contracts.ValuationFeatures{
				PER: contracts.Some(12.3),
				ROE: contracts.Some(15.0),
			},
			Strategies: map[string]contracts.StrategyResult{
				contracts.StrategyQuality: {Member: true, Score: contracts.Some(score)},
			},
			CompositeScore: contracts.Some(score + 100),
		}
	}

	return &contracts.Snapshot{
		Date: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		Rows: map[string]*contracts.DashboardRow{
			"000100": row("000100", 500),
			"000200": row("000200", 800),
		},
	}
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testLogger())

	paths, err := e.ExportAll(exportSnapshot())
	require.NoError(t, err)
	require.Len(t, paths, len(contracts.StrategyNames))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, paths[0], "quality_2026-08-21.csv")
	assert.Contains(t, content, "코드")

	// 전략점수 내림차순: 000200이 먼저
	lines := strings.Split(content, "\n")
	idx200, idx100 := -1, -1
	for i, line := range lines {
		if strings.Contains(line, "000200") {
			idx200 = i
		}
		if strings.Contains(line, "000100") {
			idx100 = i
		}
	}
	require.NotEqual(t, -1, idx200)
	require.NotEqual(t, -1, idx100)
	assert.Less(t, idx200, idx100)
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(exportSnapshot(), contracts.StrategyQuality)

	assert.Contains(t, out, "코드")
	assert.Contains(t, out, "000100")
	assert.Contains(t, out, "000200")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRenderTable(t *testing.T) {
	e := NewExporter(t.TempDir(), testLogger())

	out := e.RenderTable(exportSnapshot(), contracts.StrategyQuality)

	assert.Contains(t, out, "quality (2026-08-21)")
	assert.Contains(t, out, "000100")
	assert.Contains(t, out, "12.3")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-", formatValue(contracts.None(), "%.1f"))
	assert.Equal(t, "7.5", formatValue(contracts.Some(7.5), "%.1f"))
}
