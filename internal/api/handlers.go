package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"QuantEngine/internal/model"
	"QuantEngine/internal/recorder"
	"QuantEngine/internal/session"
)

// CycleRunner runs one evaluation cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*model.Cycle, error)
}

// Handler serves the session over HTTP.
type Handler struct {
	session    *session.Session
	runner     CycleRunner
	recorder   recorder.Recorder
	moveFactor float64
}

// NewHandler creates a handler. moveFactor is used when a gain or loss
// request carries no factor.
func NewHandler(sess *session.Session, runner CycleRunner, rec recorder.Recorder, moveFactor float64) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{session: sess, runner: runner, recorder: rec, moveFactor: moveFactor}
}

type scoreJSON struct {
	Ticker     string  `json:"ticker"`
	Score      int     `json:"score"`
	LastPrice  float64 `json:"last_price"`
	Trend      bool    `json:"trend"`
	Momentum   bool    `json:"momentum"`
	Volatility bool    `json:"volatility"`
	Strength   bool    `json:"strength"`
	RSI14      float64 `json:"rsi14"`
}

type allocationJSON struct {
	Ticker string `json:"ticker"`
	Amount string `json:"amount"`
}

type rankingResponse struct {
	CycleID     string            `json:"cycle_id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Ranked      []scoreJSON       `json:"ranked"`
	Selected    []string          `json:"selected"`
	Allocations []allocationJSON  `json:"allocations"`
	PerPosition string            `json:"per_position"`
	Skipped     map[string]string `json:"skipped"`
	Error       string            `json:"error,omitempty"`
}

func toRanking(c *model.Cycle) rankingResponse {
	resp := rankingResponse{
		CycleID:     c.ID,
		StartedAt:   c.StartedAt,
		FinishedAt:  c.FinishedAt,
		Ranked:      make([]scoreJSON, len(c.Ranked)),
		Selected:    make([]string, len(c.Selected)),
		Allocations: make([]allocationJSON, len(c.Allocations)),
		PerPosition: model.FormatMoney(c.PerPosition),
		Skipped:     c.Skipped,
	}
	for i, r := range c.Ranked {
		resp.Ranked[i] = scoreJSON{
			Ticker:     r.Ticker,
			Score:      r.Score,
			LastPrice:  r.LastPrice,
			Trend:      r.Breakdown.Trend,
			Momentum:   r.Breakdown.Momentum,
			Volatility: r.Breakdown.Volatility,
			Strength:   r.Breakdown.Strength,
			RSI14:      r.Breakdown.RSI14,
		}
	}
	for i, r := range c.Selected {
		resp.Selected[i] = r.Ticker
	}
	for i, a := range c.Allocations {
		resp.Allocations[i] = allocationJSON{Ticker: a.Ticker, Amount: model.FormatMoney(a.Amount)}
	}
	if c.Err != nil {
		resp.Error = c.Err.Error()
	}
	return resp
}

type portfolioResponse struct {
	SessionID     string            `json:"session_id"`
	Capital       string            `json:"capital"`
	EquityHistory []decimal.Decimal `json:"equity_history"`
}

func (h *Handler) portfolio() portfolioResponse {
	st := h.session.Portfolio.State()
	return portfolioResponse{
		SessionID:     h.session.ID,
		Capital:       model.FormatMoney(st.Capital),
		EquityHistory: st.EquityHistory,
	}
}

type riskResponse struct {
	Available   bool     `json:"available"`
	Sharpe      *float64 `json:"sharpe,omitempty"`
	MaxDrawdown *float64 `json:"max_drawdown,omitempty"`
	Returns     int      `json:"returns"`
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"service":    "quant-engine",
		"session_id": h.session.ID,
	})
}

// GetRanking returns the latest evaluation cycle.
// GET /api/ranking
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	c := h.session.Latest()
	if c == nil {
		respondError(w, http.StatusNotFound, "no evaluation cycle has run yet")
		return
	}
	respondJSON(w, http.StatusOK, toRanking(c))
}

// RunCycle evaluates the universe now and returns the new cycle.
// POST /api/cycle
func (h *Handler) RunCycle(w http.ResponseWriter, r *http.Request) {
	c, err := h.runner.RunCycle(r.Context())
	if c == nil {
		log.Error().Err(err).Msg("on-demand cycle failed")
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, toRanking(c))
}

// ListCycles returns recorded cycles, newest first.
// GET /api/cycles?limit=20
func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	cycles, err := h.recorder.RecentCycles(limit)
	if err != nil {
		log.Error().Err(err).Msg("list cycles")
		respondError(w, http.StatusInternalServerError, "failed to read cycles")
		return
	}
	if cycles == nil {
		cycles = []recorder.CycleSummary{}
	}
	respondJSON(w, http.StatusOK, cycles)
}

// GetPortfolio returns capital and the equity history.
// GET /api/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.portfolio())
}

type moveRequest struct {
	Factor *float64 `json:"factor"`
}

// Simulate applies a gain or loss. The body {"factor":0.02} is optional.
// POST /api/portfolio/{gain|loss}
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	dir, err := session.ParseDirection(mux.Vars(r)["direction"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	factor := h.moveFactor
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Factor != nil {
		factor = *req.Factor
	}

	if _, err := h.session.Simulate(dir, factor); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.portfolio())
}

// Reset restarts the portfolio from initial capital.
// POST /api/portfolio/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	respondJSON(w, http.StatusOK, h.portfolio())
}

// GetRisk returns Sharpe and max drawdown, or available=false while the
// history is too short.
// GET /api/risk
func (h *Handler) GetRisk(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.session.Portfolio.Analyze()
	resp := riskResponse{Available: ok, Returns: snap.Returns}
	if ok {
		resp.Sharpe = &snap.Sharpe
		resp.MaxDrawdown = &snap.MaxDrawdown
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
