package handler

import (
	"stock-pulse/internal/domain"
	"stock-pulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer           trace.Tracer
	analysisService  *service.AnalysisService
	stream           *StreamHub
	defaultTolerance domain.RiskTolerance
}

func New(
	tracer trace.Tracer,
	analysisService *service.AnalysisService,
	stream *StreamHub,
	defaultTolerance domain.RiskTolerance,
) *Handler {
	if !defaultTolerance.IsValid() {
		defaultTolerance = domain.ToleranceModerate
	}
	return &Handler{
		tracer:           tracer,
		analysisService:  analysisService,
		stream:           stream,
		defaultTolerance: defaultTolerance,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/tickers", h.GetTickers)
	r.GET("/api/candles/:ticker", h.GetCandles)
	r.GET("/api/analyses", h.GetAnalyses)
	r.POST("/api/analyses/:ticker", h.AnalyzeTicker)
	r.GET("/ws/analyses", h.StreamAnalyses)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
