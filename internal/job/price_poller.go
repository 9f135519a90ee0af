package job

import (
	"context"
	"log"
	"time"

	"stock-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type MarketDataProvider interface {
	FetchDailyHistory(ctx context.Context, ticker string) ([]domain.PricePoint, error)
}

type PriceStore interface {
	UpsertPricePoints(ctx context.Context, ticker string, points []domain.PricePoint) error
}

// PricePoller periodically refreshes daily price history for every
// watchlist ticker.
type PricePoller struct {
	tracer    trace.Tracer
	provider  MarketDataProvider
	store     PriceStore
	watchlist []string
	interval  time.Duration
}

func NewPricePoller(
	tracer trace.Tracer,
	provider MarketDataProvider,
	store PriceStore,
	watchlist []string,
	interval time.Duration,
) *PricePoller {
	if len(watchlist) == 0 {
		watchlist = domain.Watchlist
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &PricePoller{
		tracer:    tracer,
		provider:  provider,
		store:     store,
		watchlist: watchlist,
		interval:  interval,
	}
}

// Start blocks until ctx is cancelled, sweeping the watchlist on every tick.
func (p *PricePoller) Start(ctx context.Context) {
	if p.provider == nil || p.store == nil {
		log.Println("Price poller disabled: missing provider or store")
		<-ctx.Done()
		return
	}

	log.Println("Price poller starting...")
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price poller stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *PricePoller) sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "price-poller.sweep")
	defer span.End()

	for _, ticker := range p.watchlist {
		points, err := p.provider.FetchDailyHistory(ctx, ticker)
		if err != nil {
			log.Printf("price fetch error for %s: %v", ticker, err)
			continue
		}
		if err := p.store.UpsertPricePoints(ctx, ticker, points); err != nil {
			log.Printf("price store error for %s: %v", ticker, err)
		}
	}
}
