package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stock-pulse/internal/domain"
	"stock-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AnalyzeTicker godoc
// @Summary      Run a full analysis for a ticker
// @Description  Calculates indicators, generates a signal and assesses risk for one ticker
// @Tags         analyses
// @Produce      json
// @Param        ticker     path   string  true   "Stock ticker (e.g., AAPL, MSFT)"
// @Param        tolerance  query  string  false  "Risk tolerance (conservative, moderate, aggressive)"
// @Param        horizon    query  string  false  "Time horizon (short_term, medium_term, long_term)"  default(medium_term)
// @Success      200  {object}  domain.Analysis
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analyses/{ticker} [post]
func (h *Handler) AnalyzeTicker(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-ticker")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))
	if _, ok := domain.SupportedTickers[ticker]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported ticker: " + ticker,
			"supported_tickers": domain.Watchlist,
		})
		return
	}

	tolerance := h.defaultTolerance
	if raw := strings.TrimSpace(c.Query("tolerance")); raw != "" {
		parsed, err := domain.ParseRiskTolerance(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tolerance = parsed
	}

	horizon, err := domain.ParseTimeHorizon(c.Query("horizon"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.analysisService.AnalyzeTicker(ctx, ticker, tolerance, horizon)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientHistory) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetAnalyses godoc
// @Summary      List persisted analyses
// @Description  Returns recent analyses, optionally filtered by ticker, signal type and actionability
// @Tags         analyses
// @Produce      json
// @Param        ticker       query  string  false  "Stock ticker (e.g., AAPL, MSFT)"
// @Param        signal_type  query  string  false  "Signal type (BULLISH, BEARISH, NEUTRAL)"
// @Param        actionable   query  bool    false  "Only actionable (or only non-actionable) analyses"
// @Param        limit        query  int     false  "Number of analyses (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analyses [get]
func (h *Handler) GetAnalyses(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analyses")
	defer span.End()

	filter := domain.AnalysisFilter{
		Ticker:     strings.ToUpper(strings.TrimSpace(c.Query("ticker"))),
		SignalType: domain.SignalType(strings.ToUpper(strings.TrimSpace(c.Query("signal_type")))),
	}

	if filter.Ticker != "" {
		span.SetAttributes(attribute.String("ticker", filter.Ticker))
		if _, ok := domain.SupportedTickers[filter.Ticker]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "unsupported ticker: " + filter.Ticker,
				"supported_tickers": domain.Watchlist,
			})
			return
		}
	}

	if filter.SignalType != "" {
		switch filter.SignalType {
		case domain.SignalBullish, domain.SignalBearish, domain.SignalNeutral:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "signal_type must be BULLISH, BEARISH or NEUTRAL"})
			return
		}
	}

	if rawActionable := strings.TrimSpace(c.Query("actionable")); rawActionable != "" {
		actionable, err := strconv.ParseBool(rawActionable)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actionable must be a boolean"})
			return
		}
		filter.Actionable = &actionable
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	analyses, err := h.analysisService.ListAnalyses(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}
