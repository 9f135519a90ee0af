package job

import (
	"context"
	"errors"
	"log"
	"time"

	"stock-pulse/internal/domain"
	"stock-pulse/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type TickerAnalyzer interface {
	AnalyzeTicker(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error)
}

// AnalysisPoller periodically runs the full analysis pipeline for every
// watchlist ticker at the configured default tolerance.
type AnalysisPoller struct {
	tracer    trace.Tracer
	analyzer  TickerAnalyzer
	watchlist []string
	tolerance domain.RiskTolerance
	interval  time.Duration
}

func NewAnalysisPoller(
	tracer trace.Tracer,
	analyzer TickerAnalyzer,
	watchlist []string,
	tolerance domain.RiskTolerance,
	interval time.Duration,
) *AnalysisPoller {
	if len(watchlist) == 0 {
		watchlist = domain.Watchlist
	}
	if !tolerance.IsValid() {
		tolerance = domain.ToleranceModerate
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &AnalysisPoller{
		tracer:    tracer,
		analyzer:  analyzer,
		watchlist: watchlist,
		tolerance: tolerance,
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled.
func (p *AnalysisPoller) Start(ctx context.Context) {
	if p.analyzer == nil {
		log.Println("Analysis poller disabled: no analyzer")
		<-ctx.Done()
		return
	}

	log.Println("Analysis poller starting...")
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Analysis poller stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *AnalysisPoller) sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "analysis-poller.sweep")
	defer span.End()

	for _, ticker := range p.watchlist {
		_, err := p.analyzer.AnalyzeTicker(ctx, ticker, p.tolerance, domain.HorizonMedium)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrInsufficientHistory):
			log.Printf("skipping %s: %v", ticker, err)
		default:
			log.Printf("analysis error for %s: %v", ticker, err)
		}
	}
}
