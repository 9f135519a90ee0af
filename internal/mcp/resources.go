package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"stock-pulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, analyses AnalysisRunner) {
	server.AddResource(&mcp.Resource{
		URI:         "market://watchlist",
		Name:        "watchlist",
		Description: "Tickers tracked by the service with company names",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, watchlistOutput{
			Tickers:   domain.Watchlist,
			Companies: domain.SupportedTickers,
		})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "candles://{ticker}{?limit}",
		Name:        "candles-by-ticker",
		Description: "Daily OHLCV candles for a ticker; optional limit query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if analyses == nil {
			return nil, fmt.Errorf("analysis service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "candles" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		ticker, err := normalizeTicker(parsed.Host)
		if err != nil {
			return nil, err
		}

		limit := defaultCandleLimit
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			limit = normalizeCandleLimit(n)
		}

		candles, err := analyses.GetPriceHistory(ctx, ticker, limit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, candlesListOutput{Ticker: ticker, Candles: candles})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "analyses://latest{?ticker,signal_type,actionable,limit}",
		Name:        "analyses-latest",
		Description: "Recent stored analyses with optional ticker/signal_type/actionable/limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if analyses == nil {
			return nil, fmt.Errorf("analysis service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "analyses" || parsed.Host != "latest" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		input := analysesListInput{
			Ticker:     parsed.Query().Get("ticker"),
			SignalType: parsed.Query().Get("signal_type"),
			Limit:      defaultAnalysisLimit,
		}
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			input.Limit = n
		}
		if rawActionable := strings.TrimSpace(parsed.Query().Get("actionable")); rawActionable != "" {
			b, err := strconv.ParseBool(rawActionable)
			if err != nil {
				return nil, fmt.Errorf("invalid actionable: %s", rawActionable)
			}
			input.Actionable = &b
		}

		filter, err := normalizeAnalysisFilter(input)
		if err != nil {
			return nil, err
		}
		list, err := analyses.ListAnalyses(ctx, filter)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, analysesListOutput{Analyses: list})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
