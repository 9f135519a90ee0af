package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stock-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	analysisLookbackCandles = 250
	defaultListLimit        = 50
)

// ErrInsufficientHistory is returned when a ticker has too little price
// history for the indicator calculator to produce a bundle. It is an
// expected outcome, not a pipeline failure.
var ErrInsufficientHistory = errors.New("insufficient price history for analysis")

type AnalysisPriceRepository interface {
	GetPricePoints(ctx context.Context, ticker string, limit int) ([]domain.PricePoint, error)
}

type AnalysisRepository interface {
	InsertAnalysis(ctx context.Context, a *domain.Analysis) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error)
}

type IndicatorCalculator interface {
	CalculateAll(ticker string, prices []domain.PricePoint) *domain.IndicatorBundle
}

type SignalGenerator interface {
	Generate(ind *domain.IndicatorBundle, horizon domain.TimeHorizon) (*domain.Signal, error)
}

type RiskAssessor interface {
	AssessRisk(sig *domain.Signal, ind *domain.IndicatorBundle, tolerance domain.RiskTolerance) (*domain.RiskAssessment, error)
}

type AnalysisSnapshotCache interface {
	Get(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error)
	Set(ctx context.Context, a *domain.Analysis, horizon domain.TimeHorizon) error
}

type AnomalyScorer interface {
	Score(points []domain.PricePoint) (score float64, ok bool)
}

// AnalysisNotifier receives every freshly persisted analysis. Receivers
// decide for themselves whether the result is worth surfacing.
type AnalysisNotifier interface {
	AnalysisCompleted(a *domain.Analysis)
}

// Enricher augments a finished analysis with context gathered outside
// the pipeline, such as news headlines. It runs strictly after the
// verdict is final and must not change it.
type Enricher interface {
	Enrich(ctx context.Context, a *domain.Analysis) error
}

// NoopEnricher satisfies Enricher without doing anything.
type NoopEnricher struct{}

func (NoopEnricher) Enrich(context.Context, *domain.Analysis) error { return nil }

type AnalysisService struct {
	tracer    trace.Tracer
	priceRepo AnalysisPriceRepository
	repo      AnalysisRepository
	calc      IndicatorCalculator
	generator SignalGenerator
	risk      RiskAssessor
	cache     AnalysisSnapshotCache
	scorer    AnomalyScorer
	notifiers []AnalysisNotifier
	enricher  Enricher
}

func NewAnalysisService(
	tracer trace.Tracer,
	priceRepo AnalysisPriceRepository,
	repo AnalysisRepository,
	calc IndicatorCalculator,
	generator SignalGenerator,
	risk RiskAssessor,
) *AnalysisService {
	return &AnalysisService{
		tracer:    tracer,
		priceRepo: priceRepo,
		repo:      repo,
		calc:      calc,
		generator: generator,
		risk:      risk,
		enricher:  NoopEnricher{},
	}
}

// WithCache attaches a snapshot cache. Nil-safe.
func (s *AnalysisService) WithCache(cache AnalysisSnapshotCache) *AnalysisService {
	s.cache = cache
	return s
}

// WithAnomalyScorer attaches an advisory anomaly scorer.
func (s *AnalysisService) WithAnomalyScorer(scorer AnomalyScorer) *AnalysisService {
	s.scorer = scorer
	return s
}

// WithNotifier registers a receiver for completed analyses.
func (s *AnalysisService) WithNotifier(n AnalysisNotifier) *AnalysisService {
	if n != nil {
		s.notifiers = append(s.notifiers, n)
	}
	return s
}

// WithEnricher replaces the default noop enricher.
func (s *AnalysisService) WithEnricher(e Enricher) *AnalysisService {
	if e != nil {
		s.enricher = e
	}
	return s
}

// AnalyzeTicker runs the full pipeline for one ticker: load history,
// calculate indicators, generate a signal, assess risk, persist, cache,
// notify, and finally enrich. The pipeline stages never see the cache,
// the store, or the enricher.
func (s *AnalysisService) AnalyzeTicker(
	ctx context.Context,
	ticker string,
	tolerance domain.RiskTolerance,
	horizon domain.TimeHorizon,
) (*domain.Analysis, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.analyze-ticker")
	defer span.End()

	if s.priceRepo == nil || s.repo == nil || s.calc == nil || s.generator == nil || s.risk == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if _, ok := domain.SupportedTickers[ticker]; !ok {
		return nil, fmt.Errorf("unsupported ticker: %s", ticker)
	}
	if !tolerance.IsValid() {
		return nil, fmt.Errorf("invalid risk tolerance: %q", tolerance)
	}
	if horizon == "" {
		horizon = domain.HorizonMedium
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ticker, tolerance, horizon)
		if err != nil {
			log.Printf("analysis cache read error for %s: %v", ticker, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	points, err := s.priceRepo.GetPricePoints(ctx, ticker, analysisLookbackCandles)
	if err != nil {
		return nil, fmt.Errorf("get price points for %s: %w", ticker, err)
	}

	indicators := s.calc.CalculateAll(ticker, points)
	if indicators == nil {
		return nil, fmt.Errorf("%w: %s has %d points", ErrInsufficientHistory, ticker, len(points))
	}

	sig, err := s.generator.Generate(indicators, horizon)
	if err != nil {
		return nil, fmt.Errorf("generate signal for %s: %w", ticker, err)
	}

	assessment, err := s.risk.AssessRisk(sig, indicators, tolerance)
	if err != nil {
		return nil, fmt.Errorf("assess risk for %s: %w", ticker, err)
	}

	analysis := &domain.Analysis{
		Ticker:     ticker,
		Signal:     sig,
		Assessment: assessment,
		Indicators: indicators,
		Tolerance:  tolerance,
		CreatedAt:  time.Now().UTC(),
	}

	if s.scorer != nil {
		if score, ok := s.scorer.Score(points); ok {
			analysis.AnomalyScore = &score
		}
	}

	persisted, err := s.repo.InsertAnalysis(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("insert analysis for %s: %w", ticker, err)
	}
	analysis = persisted

	if s.cache != nil {
		if err := s.cache.Set(ctx, analysis, horizon); err != nil {
			log.Printf("analysis cache write error for %s: %v", ticker, err)
		}
	}

	for _, n := range s.notifiers {
		n.AnalysisCompleted(analysis)
	}

	if err := s.enricher.Enrich(ctx, analysis); err != nil {
		log.Printf("analysis enrichment error for %s: %v", ticker, err)
	}

	return analysis, nil
}

// ListAnalyses returns persisted analyses matching the filter.
func (s *AnalysisService) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.list-analyses")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	filter.Ticker = strings.ToUpper(strings.TrimSpace(filter.Ticker))
	if filter.Ticker != "" {
		if _, ok := domain.SupportedTickers[filter.Ticker]; !ok {
			return nil, fmt.Errorf("unsupported ticker: %s", filter.Ticker)
		}
	}
	if filter.SignalType != "" {
		switch filter.SignalType {
		case domain.SignalBullish, domain.SignalBearish, domain.SignalNeutral:
		default:
			return nil, fmt.Errorf("invalid signal type: %s", filter.SignalType)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	return s.repo.ListAnalyses(ctx, filter)
}

// GetPriceHistory returns ascending daily candles for a supported ticker.
func (s *AnalysisService) GetPriceHistory(ctx context.Context, ticker string, limit int) ([]domain.PricePoint, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.get-price-history")
	defer span.End()

	if s.priceRepo == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if _, ok := domain.SupportedTickers[ticker]; !ok {
		return nil, fmt.Errorf("unsupported ticker: %s", ticker)
	}
	if limit <= 0 {
		limit = analysisLookbackCandles
	}
	return s.priceRepo.GetPricePoints(ctx, ticker, limit)
}
