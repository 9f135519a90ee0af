package tui

import (
	"context"

	"stock-pulse/internal/domain"
)

// MarketQuerier provides price history to the TUI.
type MarketQuerier interface {
	GetPriceHistory(ctx context.Context, ticker string, limit int) ([]domain.PricePoint, error)
}

// AnalysisQuerier provides analysis access to the TUI.
type AnalysisQuerier interface {
	AnalyzeTicker(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error)
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Market   MarketQuerier
	Analyses AnalysisQuerier
	UserID   int64
	Username string

	// Tolerance is the SSH user's stored risk tolerance; analyses run
	// from the TUI use it.
	Tolerance domain.RiskTolerance
}

// EffectiveTolerance returns the user's tolerance, falling back to
// moderate when the stored value is missing or invalid.
func (s Services) EffectiveTolerance() domain.RiskTolerance {
	if s.Tolerance.IsValid() {
		return s.Tolerance
	}
	return domain.ToleranceModerate
}
