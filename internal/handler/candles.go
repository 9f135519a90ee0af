package handler

import (
	"net/http"
	"strconv"
	"strings"

	"stock-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetTickers godoc
// @Summary      List supported tickers
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/tickers [get]
func (h *Handler) GetTickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tickers":   domain.Watchlist,
		"companies": domain.SupportedTickers,
	})
}

// GetCandles godoc
// @Summary      Get daily candles for a ticker
// @Description  Returns stored daily OHLCV candles in ascending order
// @Tags         market
// @Produce      json
// @Param        ticker  path   string  true   "Stock ticker (e.g., AAPL, MSFT)"
// @Param        limit   query  int     false  "Number of candles (default 250, max 500)"  default(250)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/candles/{ticker} [get]
func (h *Handler) GetCandles(c *gin.Context) {
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candles")
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

	limit := 250
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	candles, err := h.analysisService.GetPriceHistory(ctx, ticker, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":  ticker,
		"candles": candles,
	})
}
