package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"range-breakout/internal/engine"
	"range-breakout/internal/model"
	"range-breakout/internal/storage"
	"range-breakout/internal/strategy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	historyLimit = 100
	maxSweepRuns = 64
)

// KlineSource is the stored market data a backtest runs over.
type KlineSource interface {
	LoadCandles(ctx context.Context, symbol string, start, end time.Time, period string) ([]model.KLine, error)
	LatestKLines(ctx context.Context, symbol, period string, limit int) ([]model.KLine, error)
}

type ReportPublisher interface {
	Publish(report *model.BacktestReport) error
}

type Options struct {
	Params     strategy.Params
	Settings   engine.Settings
	JWTSecret  string
	APIKeyHash string
}

type Handler struct {
	klines    KlineSource
	cache     storage.ReportCache
	publisher ReportPublisher
	pool      *engine.WorkerPool
	opts      Options
	logger    *zap.Logger
}

func NewHandler(klines KlineSource, cache storage.ReportCache, publisher ReportPublisher, pool *engine.WorkerPool, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		klines:    klines,
		cache:     cache,
		publisher: publisher,
		pool:      pool,
		opts:      opts,
		logger:    logger,
	}
}

// Routes mounts the v1 API. Backtest routes sit behind AuthMiddleware.
func (h *Handler) Routes(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/token", h.IssueToken)
		v1.GET("/klines/:symbol", h.GetHistoryKLines)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware(h.opts.JWTSecret))
	{
		protected.POST("/backtest", h.RunBacktest)
		protected.GET("/backtest/:id", h.GetReport)
		protected.GET("/backtest/:id/trades.csv", h.GetTradesCSV)
		protected.POST("/sweep", h.RunSweep)
	}
}

// statusFor maps configuration and data errors to 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, strategy.ErrInvalidParams),
		errors.Is(err, engine.ErrInvalidSettings),
		errors.Is(err, model.ErrEmptySeries),
		errors.Is(err, model.ErrMalformedBar),
		errors.Is(err, model.ErrUnorderedBars):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrReportNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Auth Handlers

// IssueToken exchanges the configured API key for a bearer token.
func (h *Handler) IssueToken(c *gin.Context) {
	if h.opts.JWTSecret == "" || h.opts.APIKeyHash == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "authentication disabled"})
		return
	}

	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.opts.APIKeyHash), []byte(req.APIKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	token, err := GenerateToken(h.opts.JWTSecret, "api")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Data Handlers

func (h *Handler) GetHistoryKLines(c *gin.Context) {
	symbol := model.NormalizeSymbol(c.Param("symbol"))
	period := c.DefaultQuery("period", "1d")

	klines, err := h.klines.LatestKLines(c.Request.Context(), symbol, period, historyLimit)
	if err != nil {
		h.logger.Error("failed to query klines", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, klines)
}

type rangeRequest struct {
	Symbol    string    `json:"symbol" binding:"required"`
	Period    string    `json:"period"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type runConfig struct {
	StrategyType string                 `json:"strategy_type"`
	Params       map[string]interface{} `json:"params"`
	Settings     json.RawMessage        `json:"settings"`
}

// settings overlays the request's partial settings onto the configured defaults.
func (h *Handler) settings(raw json.RawMessage) (engine.Settings, error) {
	s := h.opts.Settings
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%w: %v", engine.ErrInvalidSettings, err)
	}
	return s, s.Validate()
}

func (h *Handler) loadBars(ctx context.Context, req *rangeRequest) ([]model.Bar, error) {
	req.Symbol = model.NormalizeSymbol(req.Symbol)
	if req.Period == "" {
		req.Period = "1d"
	}
	klines, err := h.klines.LoadCandles(ctx, req.Symbol, req.StartTime, req.EndTime, req.Period)
	if err != nil {
		return nil, err
	}
	return model.BarsFromKLines(klines), nil
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) RunBacktest(c *gin.Context) {
	var req struct {
		rangeRequest
		runConfig
		IncludeSeries bool `json:"include_series"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. Validate config before touching the store
	strat, err := strategy.NewStrategy(req.StrategyType, h.paramsMap(req.Params), h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.settings(req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. Fetch history data for backtest
	bars, err := h.loadBars(c.Request.Context(), &req.rangeRequest)
	if err != nil {
		h.fail(c, "failed to fetch data", err)
		return
	}

	// 3. Run Backtest
	report, err := engine.RunBacktest(bars, strat, settings, engine.RunOptions{
		Symbol:        req.Symbol,
		Period:        req.Period,
		IncludeSeries: req.IncludeSeries,
	}, h.logger)
	if err != nil {
		h.fail(c, "backtest failed", err)
		return
	}

	h.store(c.Request.Context(), report)
	if h.publisher != nil {
		if err := h.publisher.Publish(report); err != nil {
			h.logger.Warn("failed to publish report", zap.String("run_id", report.RunID.String()), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, report)
}

// paramsMap layers request params over the configured defaults.
func (h *Handler) paramsMap(req map[string]interface{}) map[string]interface{} {
	merged := h.opts.Params.ToMap()
	for k, v := range req {
		merged[k] = v
	}
	return merged
}

func (h *Handler) store(ctx context.Context, report *model.BacktestReport) {
	if err := h.cache.Put(ctx, report); err != nil {
		h.logger.Warn("failed to cache report", zap.String("run_id", report.RunID.String()), zap.Error(err))
	}
}

func (h *Handler) lookup(c *gin.Context) (*model.BacktestReport, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return nil, false
	}
	report, err := h.cache.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to load report", err)
		return nil, false
	}
	return report, true
}

func (h *Handler) GetReport(c *gin.Context) {
	if report, ok := h.lookup(c); ok {
		c.JSON(http.StatusOK, report)
	}
}

func (h *Handler) GetTradesCSV(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="trades-%s.csv"`, report.RunID))
	c.Status(http.StatusOK)
	if err := engine.WriteTradesCSV(c.Writer, report.Ledger.Trades); err != nil {
		h.logger.Error("failed to write trades csv", zap.Error(err))
	}
}

type sweepItem struct {
	Index   int                    `json:"index"`
	RunID   *uuid.UUID             `json:"run_id,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Summary *model.Summary         `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func (h *Handler) RunSweep(c *gin.Context) {
	var req struct {
		rangeRequest
		Runs []runConfig `json:"runs" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Runs) > maxSweepRuns {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d runs per sweep", maxSweepRuns)})
		return
	}

	jobs := make([]engine.Job, len(req.Runs))
	for i, run := range req.Runs {
		params, err := strategy.ParamsFromMap(h.opts.Params, run.Params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("run %d: %v", i, err)})
			return
		}
		settings, err := h.settings(run.Settings)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("run %d: %v", i, err)})
			return
		}
		jobs[i] = engine.Job{Params: params, Settings: settings}
	}

	bars, err := h.loadBars(c.Request.Context(), &req.rangeRequest)
	if err != nil {
		h.fail(c, "failed to fetch data", err)
		return
	}
	if err := model.ValidateBars(bars); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.pool.RunAll(c.Request.Context(), bars, jobs, engine.RunOptions{Symbol: req.Symbol, Period: req.Period})
	items := make([]sweepItem, len(results))
	for i, r := range results {
		items[i] = sweepItem{Index: r.Index}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
			continue
		}
		h.store(c.Request.Context(), r.Report)
		id := r.Report.RunID
		items[i].RunID = &id
		items[i].Params = r.Report.Params
		items[i].Summary = &r.Report.Summary
	}
	c.JSON(http.StatusOK, gin.H{"symbol": req.Symbol, "bars": len(bars), "results": items})
}
