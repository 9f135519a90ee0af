package mcp

import (
	"fmt"
	"strings"

	"stock-pulse/internal/domain"
)

const (
	defaultCandleLimit   = 100
	maxCandleLimit       = 500
	defaultAnalysisLimit = 50
	maxAnalysisLimit     = 200
)

type analyzeTickerInput struct {
	Ticker    string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
	Tolerance string `json:"tolerance,omitempty" jsonschema:"risk tolerance: conservative, moderate, aggressive (default moderate)"`
	Horizon   string `json:"horizon,omitempty" jsonschema:"time horizon: short_term, medium_term, long_term (default medium_term)"`
}

type analyzeTickerOutput struct {
	Analysis *domain.Analysis `json:"analysis"`
}

type analysesListInput struct {
	Ticker     string `json:"ticker,omitempty" jsonschema:"optional stock ticker (e.g. AAPL, MSFT)"`
	SignalType string `json:"signal_type,omitempty" jsonschema:"optional signal type: BULLISH, BEARISH, NEUTRAL"`
	Actionable *bool  `json:"actionable,omitempty" jsonschema:"optional actionability filter"`
	Limit      int    `json:"limit,omitempty" jsonschema:"number of analyses to return, max 200"`
}

type analysesListOutput struct {
	Analyses []domain.Analysis `json:"analyses"`
}

type candlesListInput struct {
	Ticker string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of daily candles to return, max 500"`
}

type candlesListOutput struct {
	Ticker  string              `json:"ticker"`
	Candles []domain.PricePoint `json:"candles"`
}

type watchlistOutput struct {
	Tickers   []string          `json:"tickers"`
	Companies map[string]string `json:"companies"`
}

func normalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if _, ok := domain.SupportedTickers[ticker]; !ok {
		return "", fmt.Errorf("unsupported ticker: %s", ticker)
	}
	return ticker, nil
}

func normalizeTolerance(raw string) (domain.RiskTolerance, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.ToleranceModerate, nil
	}
	return domain.ParseRiskTolerance(raw)
}

func normalizeCandleLimit(limit int) int {
	if limit <= 0 {
		return defaultCandleLimit
	}
	if limit > maxCandleLimit {
		return maxCandleLimit
	}
	return limit
}

func normalizeAnalysisLimit(limit int) int {
	if limit <= 0 {
		return defaultAnalysisLimit
	}
	if limit > maxAnalysisLimit {
		return maxAnalysisLimit
	}
	return limit
}

func normalizeAnalysisFilter(in analysesListInput) (domain.AnalysisFilter, error) {
	filter := domain.AnalysisFilter{Limit: normalizeAnalysisLimit(in.Limit)}

	if strings.TrimSpace(in.Ticker) != "" {
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.Ticker = ticker
	}

	if raw := strings.ToUpper(strings.TrimSpace(in.SignalType)); raw != "" {
		signalType := domain.SignalType(raw)
		switch signalType {
		case domain.SignalBullish, domain.SignalBearish, domain.SignalNeutral:
		default:
			return domain.AnalysisFilter{}, fmt.Errorf("unsupported signal type: %s", in.SignalType)
		}
		filter.SignalType = signalType
	}

	filter.Actionable = in.Actionable
	return filter, nil
}
