package mcp

import (
	"context"
	"fmt"

	"stock-pulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, analyses AnalysisRunner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_ticker",
		Description: "Run the full deterministic analysis pipeline (indicators, signal, risk) for one ticker",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analyzeTickerInput) (*mcp.CallToolResult, analyzeTickerOutput, error) {
		if analyses == nil {
			return nil, analyzeTickerOutput{}, fmt.Errorf("analysis service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}
		tolerance, err := normalizeTolerance(in.Tolerance)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}
		horizon, err := domain.ParseTimeHorizon(in.Horizon)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}

		analysis, err := analyses.AnalyzeTicker(ctx, ticker, tolerance, horizon)
		if err != nil {
			return nil, analyzeTickerOutput{}, err
		}
		return nil, analyzeTickerOutput{Analysis: analysis}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyses_list",
		Description: "Get recent stored analyses with optional ticker/signal_type/actionable filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analysesListInput) (*mcp.CallToolResult, analysesListOutput, error) {
		if analyses == nil {
			return nil, analysesListOutput{}, fmt.Errorf("analysis service unavailable")
		}
		filter, err := normalizeAnalysisFilter(in)
		if err != nil {
			return nil, analysesListOutput{}, err
		}
		result, err := analyses.ListAnalyses(ctx, filter)
		if err != nil {
			return nil, analysesListOutput{}, err
		}
		return nil, analysesListOutput{Analyses: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "candles_list",
		Description: "Get stored daily OHLCV candles for a ticker in ascending order",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in candlesListInput) (*mcp.CallToolResult, candlesListOutput, error) {
		if analyses == nil {
			return nil, candlesListOutput{}, fmt.Errorf("analysis service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, candlesListOutput{}, err
		}
		limit := normalizeCandleLimit(in.Limit)

		candles, err := analyses.GetPriceHistory(ctx, ticker, limit)
		if err != nil {
			return nil, candlesListOutput{}, err
		}
		return nil, candlesListOutput{Ticker: ticker, Candles: candles}, nil
	})
}
