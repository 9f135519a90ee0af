package cache

import (
	"context"
	"testing"
	"time"

	"stock-pulse/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) (*AnalysisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAnalysisCache(client, time.Minute), mr
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Ticker: "AAPL",
		Signal: &domain.Signal{
			Ticker:      "AAPL",
			Timestamp:   time.Unix(1_700_000_000, 0).UTC(),
			Strength:    domain.SignalStrength{SignalType: domain.SignalBullish, Confidence: 0.8, Label: "strong"},
			TimeHorizon: domain.HorizonMedium,
		},
		Assessment: &domain.RiskAssessment{
			OverallRisk:  domain.RiskLow,
			RiskFactors:  []domain.RiskFactor{},
			IsActionable: true,
		},
		Tolerance: domain.ToleranceModerate,
	}
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "AAPL", domain.ToleranceModerate, domain.HorizonMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if miss != nil {
		t.Fatal("expected a miss on an empty cache")
	}

	want := sampleAnalysis()
	if err := cache.Set(ctx, want, domain.HorizonMedium); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get(ctx, "AAPL", domain.ToleranceModerate, domain.HorizonMedium)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}
	if got.Signal.Strength.SignalType != domain.SignalBullish || !got.Assessment.IsActionable {
		t.Fatalf("cached analysis corrupted: %+v", got)
	}
}

func TestAnalysisCacheKeyIncludesToleranceAndHorizon(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, sampleAnalysis(), domain.HorizonMedium); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get(ctx, "AAPL", domain.ToleranceConservative, domain.HorizonMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("different tolerance must not share a cache entry")
	}

	got, err = cache.Get(ctx, "AAPL", domain.ToleranceModerate, domain.HorizonLong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("different horizon must not share a cache entry")
	}
}

func TestAnalysisCacheExpires(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, sampleAnalysis(), domain.HorizonMedium); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "AAPL", domain.ToleranceModerate, domain.HorizonMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected entry to expire")
	}
}

func TestAnalysisCacheNilClientIsNoop(t *testing.T) {
	var cache *AnalysisCache
	if _, err := cache.Get(context.Background(), "AAPL", domain.ToleranceModerate, domain.HorizonMedium); err != nil {
		t.Fatalf("nil cache should be a noop, got %v", err)
	}
	if err := cache.Set(context.Background(), sampleAnalysis(), domain.HorizonMedium); err != nil {
		t.Fatalf("nil cache should be a noop, got %v", err)
	}
}
