package mcp

import (
	"context"
	"encoding/json"
	"time"

	"stock-pulse/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubAnalysisService struct {
	analysis *domain.Analysis
	listed   []domain.Analysis
	candles  []domain.PricePoint

	lastTicker    string
	lastTolerance domain.RiskTolerance
	lastHorizon   domain.TimeHorizon
	lastFilter    domain.AnalysisFilter
	lastLimit     int
}

func (s *stubAnalysisService) AnalyzeTicker(_ context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error) {
	s.lastTicker = ticker
	s.lastTolerance = tolerance
	s.lastHorizon = horizon
	return s.analysis, nil
}

func (s *stubAnalysisService) ListAnalyses(_ context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error) {
	s.lastFilter = filter
	return append([]domain.Analysis(nil), s.listed...), nil
}

func (s *stubAnalysisService) GetPriceHistory(_ context.Context, ticker string, limit int) ([]domain.PricePoint, error) {
	s.lastTicker = ticker
	s.lastLimit = limit
	return append([]domain.PricePoint(nil), s.candles...), nil
}

func testServer() (*sdkmcp.Server, *stubAnalysisService) {
	analyses := &stubAnalysisService{
		analysis: &domain.Analysis{
			ID:     1,
			Ticker: "AAPL",
			Signal: &domain.Signal{
				Ticker: "AAPL",
				Strength: domain.SignalStrength{
					SignalType: domain.SignalBullish,
					Confidence: 0.82,
					Label:      "strong bullish",
				},
				Reasoning: domain.SignalReasoning{
					SupportingIndicators: map[string]float64{},
				},
			},
			Assessment: &domain.RiskAssessment{OverallRisk: domain.RiskLow, IsActionable: true},
			Tolerance:  domain.ToleranceModerate,
			CreatedAt:  time.Unix(0, 0).UTC(),
		},
		listed: []domain.Analysis{{
			ID:        2,
			Ticker:    "MSFT",
			Tolerance: domain.ToleranceModerate,
			CreatedAt: time.Unix(0, 0).UTC(),
		}},
		candles: []domain.PricePoint{{
			Timestamp: time.Unix(0, 0).UTC(),
			Open:      1, High: 2, Low: 1, Close: 2, Volume: 3,
		}},
	}

	srv := NewServer(nil, analyses, ServerConfig{RequestTimeout: time.Second})
	return srv, analyses
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
