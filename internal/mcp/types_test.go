package mcp

import (
	"testing"

	"stock-pulse/internal/domain"
)

func TestNormalizeTicker(t *testing.T) {
	ticker, err := normalizeTicker(" aapl ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker != "AAPL" {
		t.Fatalf("expected AAPL, got %s", ticker)
	}

	if _, err := normalizeTicker("fake"); err == nil {
		t.Fatal("expected unsupported ticker error")
	}
	if _, err := normalizeTicker("  "); err == nil {
		t.Fatal("expected missing ticker error")
	}
}

func TestNormalizeTolerance(t *testing.T) {
	tolerance, err := normalizeTolerance("")
	if err != nil || tolerance != domain.ToleranceModerate {
		t.Fatalf("expected moderate default, got %s err=%v", tolerance, err)
	}

	tolerance, err = normalizeTolerance("AGGRESSIVE")
	if err != nil || tolerance != domain.ToleranceAggressive {
		t.Fatalf("expected aggressive, got %s err=%v", tolerance, err)
	}

	if _, err := normalizeTolerance("medium"); err == nil {
		t.Fatal("expected invalid tolerance error")
	}
}

func TestNormalizeAnalysisFilter(t *testing.T) {
	actionable := true
	filter, err := normalizeAnalysisFilter(analysesListInput{
		Ticker:     "msft",
		SignalType: "bullish",
		Actionable: &actionable,
		Limit:      999,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Ticker != "MSFT" {
		t.Fatalf("expected ticker MSFT, got %s", filter.Ticker)
	}
	if filter.SignalType != domain.SignalBullish {
		t.Fatalf("expected BULLISH, got %s", filter.SignalType)
	}
	if filter.Actionable == nil || !*filter.Actionable {
		t.Fatalf("unexpected actionable %+v", filter.Actionable)
	}
	if filter.Limit != maxAnalysisLimit {
		t.Fatalf("expected capped limit %d, got %d", maxAnalysisLimit, filter.Limit)
	}

	if _, err := normalizeAnalysisFilter(analysesListInput{SignalType: "SIDEWAYS"}); err == nil {
		t.Fatal("expected unsupported signal type error")
	}
}

func TestNormalizeCandleLimit(t *testing.T) {
	if got := normalizeCandleLimit(0); got != defaultCandleLimit {
		t.Fatalf("expected default %d, got %d", defaultCandleLimit, got)
	}
	if got := normalizeCandleLimit(10_000); got != maxCandleLimit {
		t.Fatalf("expected cap %d, got %d", maxCandleLimit, got)
	}
	if got := normalizeCandleLimit(42); got != 42 {
		t.Fatalf("expected passthrough 42, got %d", got)
	}
}
