package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/internal/export"
	"github.com/wonny/kquant/internal/screening"
	"github.com/wonny/kquant/pkg/logger"
	"github.com/wonny/kquant/pkg/redis"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// DashboardHandler serves the materialized screening results
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type DashboardHandler struct {
	store    contracts.SnapshotStore
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler. cacheTTL bounds how
// long list responses may lag behind a snapshot rotation.
func NewDashboardHandler(store contracts.SnapshotStore, cache *redis.Cache, cacheTTL time.Duration, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// SummaryRow is the compact list representation of one security.
type SummaryRow struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Market         string          `json:"market"`
	Close          float64         `json:"close"`
	MarketCap      float64         `json:"market_cap"`
	PER            contracts.Value `json:"per"`
	PBR            contracts.Value `json:"pbr"`
	ROE            contracts.Value `json:"roe"`
	FScore         int             `json:"f_score"`
	CompositeScore contracts.Value `json:"composite_score"`
	StrategyScore  contracts.Value `json:"strategy_score,omitempty"`
}

// DashboardResponse is the paginated dashboard list response.
type DashboardResponse struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Size    int    `json:"size"`
	Data    []SummaryRow `json:"data"`
}

// GetDashboard returns the screened universe, optionally filtered to one
// strategy's members and sorted by a score.
// GET /api/dashboard?strategy=&sort=&order=&page=&size=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	strategy := r.URL.Query().Get("strategy")
	if strategy != "" && !validStrategy(strategy) {
		respondError(w, http.StatusBadRequest, "Unknown strategy: "+strategy)
		return
	}
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = "composite"
	}
	order := r.URL.Query().Get("order")
	ascending := order == "asc"
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	cacheKey := redis.DashboardKey(strategy, sortBy, order, page, size)
	var cached DashboardResponse
	if found, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snap, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	rows := h.collectRows(snap, strategy)
	sortRows(rows, snap, strategy, sortBy, ascending)

	total := len(rows)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	data := make([]SummaryRow, 0, end-start)
	for _, row := range rows[start:end] {
		data = append(data, summarize(row, strategy))
	}

	resp := DashboardResponse{
		Success: true,
		Date:    snap.Date.Format("2006-01-02"),
		Total:   total,
		Page:    page,
		Size:    size,
		Data:    data,
	}
	_ = h.cache.Set(ctx, cacheKey, resp, h.cacheTTL)

	respondJSON(w, http.StatusOK, resp)
}

// GetStock returns the full feature vector for one security.
// GET /api/stocks/{code}
func (h *DashboardHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := mux.Vars(r)["code"]

	var row contracts.DashboardRow
	found, err := h.cache.Get(ctx, redis.StockDetailKey(code), &row)
	if err == nil && found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    row,
		})
		return
	}

	snap, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	stored, ok := snap.Rows[code]
	if !ok {
		respondError(w, http.StatusNotFound, "Stock not found: "+code)
		return
	}

	_ = h.cache.Set(ctx, redis.StockDetailKey(code), stored, redis.TTLLong)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stored,
	})
}

// StrategySummary is one strategy's headline numbers.
type StrategySummary struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// GetStrategies returns the strategy list with member counts.
// GET /api/strategies
func (h *DashboardHandler) GetStrategies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	summaries := make([]StrategySummary, 0, len(contracts.StrategyNames))
	for _, name := range contracts.StrategyNames {
		summaries = append(summaries, StrategySummary{
			Name:    name,
			Members: len(snap.Members(name)),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"date":    snap.Date.Format("2006-01-02"),
		"data":    summaries,
	})
}

// GetStrategyMembers returns one strategy's members, best score first.
// GET /api/strategies/{name}
func (h *DashboardHandler) GetStrategyMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	if !validStrategy(name) {
		respondError(w, http.StatusBadRequest, "Unknown strategy: "+name)
		return
	}

	var cached map[string]interface{}
	if found, err := h.cache.Get(ctx, redis.StrategyMembersKey(name), &cached); err == nil && found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snap, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	rows := h.collectRows(snap, name)
	sortRows(rows, snap, name, "score", false)

	data := make([]SummaryRow, 0, len(rows))
	for _, row := range rows {
		data = append(data, summarize(row, name))
	}

	resp := map[string]interface{}{
		"success": true,
		"date":    snap.Date.Format("2006-01-02"),
		"data":    data,
	}
	_ = h.cache.Set(ctx, redis.StrategyMembersKey(name), resp, h.cacheTTL)

	respondJSON(w, http.StatusOK, resp)
}

// ExportStrategyCSV streams one strategy's member list as a CSV download.
// GET /api/export/{name}
func (h *DashboardHandler) ExportStrategyCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	if !validStrategy(name) {
		respondError(w, http.StatusBadRequest, "Unknown strategy: "+name)
		return
	}

	snap, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", name, snap.Date.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, export.RenderCSV(snap, name))
}

// GetDiff returns membership changes between the current and the previous
// snapshot.
// GET /api/diff
func (h *DashboardHandler) GetDiff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	curr, err := h.store.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load current snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	if curr == nil {
		respondError(w, http.StatusNotFound, "No screening snapshot available yet")
		return
	}

	diffKey := redis.DiffKey(curr.Date.Format("2006-01-02"))
	var cached contracts.DiffSummary
	if found, err := h.cache.Get(ctx, diffKey, &cached); err == nil && found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    cached,
		})
		return
	}

	prev, err := h.store.Previous(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load previous snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	summary := screening.Diff(prev, curr)
	_ = h.cache.Set(ctx, diffKey, summary, h.cacheTTL)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}

// Helper functions

func (h *DashboardHandler) collectRows(snap *contracts.Snapshot, strategy string) []*contracts.DashboardRow {
	rows := make([]*contracts.DashboardRow, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		if strategy != "" {
			sr, ok := row.Strategies[strategy]
			if !ok || !sr.Member {
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// sortRows orders by the requested score; undefined values always sink to
// the end. sortBy는 composite/score 또는 지표 ID.
func sortRows(rows []*contracts.DashboardRow, snap *contracts.Snapshot, strategy, sortBy string, ascending bool) {
	keyOf := func(row *contracts.DashboardRow) contracts.Value {
		switch sortBy {
		case "composite":
			return row.CompositeScore
		case "score":
			if strategy == "" {
				return row.CompositeScore
			}
			return row.Strategies[strategy].Score
		default:
			return row.Percentiles[sortBy]
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := keyOf(rows[i]), keyOf(rows[j])
		if a.Valid != b.Valid {
			return a.Valid
		}
		if !a.Valid {
			return rows[i].Security.Code < rows[j].Security.Code
		}
		if a.Float != b.Float {
			if ascending {
				return a.Float < b.Float
			}
			return a.Float > b.Float
		}
		return rows[i].Security.Code < rows[j].Security.Code
	})
}

func summarize(row *contracts.DashboardRow, strategy string) SummaryRow {
	s := SummaryRow{
		Code:           row.Security.Code,
		Name:           row.Security.Name,
		Market:         row.Security.Market,
		Close:          row.Quote.Close,
		MarketCap:      row.Quote.MarketCap,
		PER:            row.Valuation.PER,
		PBR:            row.Valuation.PBR,
		ROE:            row.Valuation.ROE,
		FScore:         row.Fundamental.FScore,
		CompositeScore: row.CompositeScore,
	}
	if strategy != "" {
		s.StrategyScore = row.Strategies[strategy].Score
	}
	return s
}

func validStrategy(name string) bool {
	for _, s := range contracts.StrategyNames {
		if s == name {
			return true
		}
	}
	return false
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
