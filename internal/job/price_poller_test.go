package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubProvider struct {
	mu      sync.Mutex
	points  []domain.PricePoint
	err     error
	tickers []string
}

func (s *stubProvider) FetchDailyHistory(_ context.Context, ticker string) ([]domain.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers = append(s.tickers, ticker)
	return s.points, s.err
}

func (s *stubProvider) fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tickers...)
}

type stubStore struct {
	mu      sync.Mutex
	upserts map[string]int
	err     error
}

func (s *stubStore) UpsertPricePoints(_ context.Context, ticker string, _ []domain.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upserts == nil {
		s.upserts = make(map[string]int)
	}
	s.upserts[ticker]++
	return s.err
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestPricePollerSweep(t *testing.T) {
	provider := &stubProvider{points: make([]domain.PricePoint, 3)}
	store := &stubStore{}
	poller := NewPricePoller(
		trace.NewNoopTracerProvider().Tracer("test"),
		provider,
		store,
		[]string{"AAPL", "MSFT"},
		time.Hour,
	)

	poller.sweep(context.Background())

	got := provider.fetched()
	if len(got) != 2 || got[0] != "AAPL" || got[1] != "MSFT" {
		t.Fatalf("unexpected fetch order: %v", got)
	}
	if store.upserts["AAPL"] != 1 || store.upserts["MSFT"] != 1 {
		t.Fatalf("unexpected upserts: %v", store.upserts)
	}
}

func TestPricePollerContinuesAfterFetchError(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	store := &stubStore{}
	poller := NewPricePoller(
		trace.NewNoopTracerProvider().Tracer("test"),
		provider,
		store,
		[]string{"AAPL", "MSFT"},
		time.Hour,
	)

	poller.sweep(context.Background())

	if len(provider.fetched()) != 2 {
		t.Fatal("expected sweep to visit every ticker despite errors")
	}
	if len(store.upserts) != 0 {
		t.Fatalf("expected no upserts on fetch errors, got %v", store.upserts)
	}
}

func TestPricePollerStart(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{points: make([]domain.PricePoint, 1)}
	poller := NewPricePoller(
		trace.NewNoopTracerProvider().Tracer("test"),
		provider,
		&stubStore{},
		nil,
		time.Hour,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return len(provider.fetched()) >= len(domain.Watchlist) })
	cancel()
}
