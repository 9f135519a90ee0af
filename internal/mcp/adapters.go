package mcp

import (
	"context"

	"stock-pulse/internal/domain"
)

// AnalysisRunner exposes the analysis pipeline and its stored results.
type AnalysisRunner interface {
	AnalyzeTicker(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error)
	GetPriceHistory(ctx context.Context, ticker string, limit int) ([]domain.PricePoint, error)
}
