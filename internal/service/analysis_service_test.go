package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubPriceRepo struct {
	points    []domain.PricePoint
	err       error
	lastLimit int
	calls     int
}

func (s *stubPriceRepo) GetPricePoints(_ context.Context, _ string, limit int) ([]domain.PricePoint, error) {
	s.calls++
	s.lastLimit = limit
	return s.points, s.err
}

type stubAnalysisRepo struct {
	inserted   *domain.Analysis
	insertErr  error
	listFilter domain.AnalysisFilter
	listOut    []domain.Analysis
	listErr    error
}

func (s *stubAnalysisRepo) InsertAnalysis(_ context.Context, a *domain.Analysis) (*domain.Analysis, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	persisted := *a
	persisted.ID = 7
	persisted.CreatedAt = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	s.inserted = &persisted
	return &persisted, nil
}

func (s *stubAnalysisRepo) ListAnalyses(_ context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error) {
	s.listFilter = filter
	return s.listOut, s.listErr
}

type stubCalc struct{ bundle *domain.IndicatorBundle }

func (s *stubCalc) CalculateAll(string, []domain.PricePoint) *domain.IndicatorBundle {
	return s.bundle
}

type stubGenerator struct {
	signal *domain.Signal
	err    error
}

func (s *stubGenerator) Generate(*domain.IndicatorBundle, domain.TimeHorizon) (*domain.Signal, error) {
	return s.signal, s.err
}

type stubRisk struct {
	assessment *domain.RiskAssessment
	err        error
	tolerance  domain.RiskTolerance
}

func (s *stubRisk) AssessRisk(_ *domain.Signal, _ *domain.IndicatorBundle, tolerance domain.RiskTolerance) (*domain.RiskAssessment, error) {
	s.tolerance = tolerance
	return s.assessment, s.err
}

type stubSnapshotCache struct {
	cached *domain.Analysis
	getErr error
	stored *domain.Analysis
}

func (s *stubSnapshotCache) Get(context.Context, string, domain.RiskTolerance, domain.TimeHorizon) (*domain.Analysis, error) {
	return s.cached, s.getErr
}

func (s *stubSnapshotCache) Set(_ context.Context, a *domain.Analysis, _ domain.TimeHorizon) error {
	s.stored = a
	return nil
}

type stubScorer struct {
	score float64
	ok    bool
}

func (s *stubScorer) Score([]domain.PricePoint) (float64, bool) { return s.score, s.ok }

type recordingNotifier struct{ received []*domain.Analysis }

func (r *recordingNotifier) AnalysisCompleted(a *domain.Analysis) {
	r.received = append(r.received, a)
}

type recordingEnricher struct {
	got *domain.Analysis
	err error
}

func (r *recordingEnricher) Enrich(_ context.Context, a *domain.Analysis) error {
	r.got = a
	return r.err
}

func healthyPipeline() (*stubCalc, *stubGenerator, *stubRisk) {
	bundle := &domain.IndicatorBundle{
		Ticker:          "AAPL",
		RSI:             55,
		BollingerUpper:  104,
		BollingerMiddle: 100,
		BollingerLower:  96,
	}
	sig := &domain.Signal{
		Ticker: "AAPL",
		Strength: domain.SignalStrength{
			SignalType: domain.SignalBullish,
			Confidence: 0.82,
			Label:      "strong bullish",
		},
	}
	assessment := &domain.RiskAssessment{OverallRisk: domain.RiskLow, IsActionable: true}
	return &stubCalc{bundle: bundle}, &stubGenerator{signal: sig}, &stubRisk{assessment: assessment}
}

func newService(priceRepo *stubPriceRepo, repo *stubAnalysisRepo, calc *stubCalc, gen *stubGenerator, risk *stubRisk) *AnalysisService {
	return NewAnalysisService(
		trace.NewNoopTracerProvider().Tracer("test"),
		priceRepo,
		repo,
		calc,
		gen,
		risk,
	)
}

func TestAnalyzeTickerRejectsBadInput(t *testing.T) {
	calc, gen, risk := healthyPipeline()
	svc := newService(&stubPriceRepo{}, &stubAnalysisRepo{}, calc, gen, risk)

	if _, err := svc.AnalyzeTicker(context.Background(), "DOGE", domain.ToleranceModerate, ""); err == nil {
		t.Fatal("expected error for unsupported ticker")
	}
	if _, err := svc.AnalyzeTicker(context.Background(), "AAPL", domain.RiskTolerance("medium"), ""); err == nil {
		t.Fatal("expected error for invalid tolerance")
	}
}

func TestAnalyzeTickerInsufficientHistory(t *testing.T) {
	_, gen, risk := healthyPipeline()
	svc := newService(
		&stubPriceRepo{points: make([]domain.PricePoint, 10)},
		&stubAnalysisRepo{},
		&stubCalc{bundle: nil},
		gen,
		risk,
	)

	_, err := svc.AnalyzeTicker(context.Background(), "AAPL", domain.ToleranceModerate, "")
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestAnalyzeTickerFullRun(t *testing.T) {
	calc, gen, risk := healthyPipeline()
	priceRepo := &stubPriceRepo{points: make([]domain.PricePoint, 120)}
	repo := &stubAnalysisRepo{}
	cache := &stubSnapshotCache{}
	notifier := &recordingNotifier{}
	enricher := &recordingEnricher{}

	svc := newService(priceRepo, repo, calc, gen, risk).
		WithCache(cache).
		WithAnomalyScorer(&stubScorer{score: 0.42, ok: true}).
		WithNotifier(notifier).
		WithEnricher(enricher)

	got, err := svc.AnalyzeTicker(context.Background(), " aapl ", domain.ToleranceConservative, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != 7 {
		t.Fatalf("expected persisted ID, got %d", got.ID)
	}
	if got.Ticker != "AAPL" {
		t.Fatalf("expected normalized ticker, got %q", got.Ticker)
	}
	if got.Tolerance != domain.ToleranceConservative {
		t.Fatalf("unexpected tolerance: %q", got.Tolerance)
	}
	if risk.tolerance != domain.ToleranceConservative {
		t.Fatalf("risk engine saw tolerance %q", risk.tolerance)
	}
	if got.AnomalyScore == nil || *got.AnomalyScore != 0.42 {
		t.Fatalf("expected anomaly score 0.42, got %v", got.AnomalyScore)
	}
	if priceRepo.lastLimit != analysisLookbackCandles {
		t.Fatalf("expected lookback %d, got %d", analysisLookbackCandles, priceRepo.lastLimit)
	}
	if cache.stored == nil || cache.stored.ID != 7 {
		t.Fatal("expected persisted analysis in cache")
	}
	if len(notifier.received) != 1 || notifier.received[0].ID != 7 {
		t.Fatalf("expected one notification with persisted analysis, got %d", len(notifier.received))
	}
	if enricher.got == nil || enricher.got.ID != 7 {
		t.Fatal("expected enricher to receive the persisted analysis")
	}
}

func TestAnalyzeTickerCacheHitSkipsPipeline(t *testing.T) {
	calc, gen, risk := healthyPipeline()
	priceRepo := &stubPriceRepo{}
	cached := &domain.Analysis{ID: 3, Ticker: "AAPL"}
	svc := newService(priceRepo, &stubAnalysisRepo{}, calc, gen, risk).
		WithCache(&stubSnapshotCache{cached: cached})

	got, err := svc.AnalyzeTicker(context.Background(), "AAPL", domain.ToleranceModerate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 3 {
		t.Fatalf("expected cached analysis, got ID %d", got.ID)
	}
	if priceRepo.calls != 0 {
		t.Fatalf("expected no price repo call on cache hit, got %d", priceRepo.calls)
	}
}

func TestAnalyzeTickerEnrichmentFailureIsNotFatal(t *testing.T) {
	calc, gen, risk := healthyPipeline()
	svc := newService(
		&stubPriceRepo{points: make([]domain.PricePoint, 120)},
		&stubAnalysisRepo{},
		calc,
		gen,
		risk,
	).WithEnricher(&recordingEnricher{err: errors.New("news feed down")})

	if _, err := svc.AnalyzeTicker(context.Background(), "AAPL", domain.ToleranceModerate, ""); err != nil {
		t.Fatalf("enrichment failure leaked into pipeline result: %v", err)
	}
}

func TestListAnalysesNormalizesFilter(t *testing.T) {
	repo := &stubAnalysisRepo{}
	calc, gen, risk := healthyPipeline()
	svc := newService(&stubPriceRepo{}, repo, calc, gen, risk)

	if _, err := svc.ListAnalyses(context.Background(), domain.AnalysisFilter{Ticker: " msft "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listFilter.Ticker != "MSFT" {
		t.Fatalf("expected normalized ticker, got %q", repo.listFilter.Ticker)
	}
	if repo.listFilter.Limit != defaultListLimit {
		t.Fatalf("expected default limit, got %d", repo.listFilter.Limit)
	}

	if _, err := svc.ListAnalyses(context.Background(), domain.AnalysisFilter{Ticker: "DOGE"}); err == nil {
		t.Fatal("expected error for unsupported ticker filter")
	}
	if _, err := svc.ListAnalyses(context.Background(), domain.AnalysisFilter{SignalType: "SIDEWAYS"}); err == nil {
		t.Fatal("expected error for invalid signal type")
	}
}

func TestGetPriceHistory(t *testing.T) {
	priceRepo := &stubPriceRepo{points: make([]domain.PricePoint, 5)}
	calc, gen, risk := healthyPipeline()
	svc := newService(priceRepo, &stubAnalysisRepo{}, calc, gen, risk)

	points, err := svc.GetPriceHistory(context.Background(), "nvda", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	if priceRepo.lastLimit != analysisLookbackCandles {
		t.Fatalf("expected default limit, got %d", priceRepo.lastLimit)
	}

	if _, err := svc.GetPriceHistory(context.Background(), "DOGE", 10); err == nil {
		t.Fatal("expected error for unsupported ticker")
	}
}
