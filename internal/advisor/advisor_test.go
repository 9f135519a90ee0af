package advisor

import (
	"context"
	"errors"
	"testing"

	"stock-pulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"
)

type stubCompletions struct {
	lastParams openai.ChatCompletionNewParams
	reply      string
	err        error
}

func (s *stubCompletions) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Ticker: "AAPL",
		Signal: &domain.Signal{
			Ticker: "AAPL",
			Strength: domain.SignalStrength{
				SignalType: domain.SignalBullish,
				Confidence: 0.81,
				Label:      "strong bullish",
			},
		},
		Assessment: &domain.RiskAssessment{
			OverallRisk:  domain.RiskLow,
			IsActionable: true,
		},
		Tolerance: domain.ToleranceModerate,
	}
}

func TestExplainNotConfigured(t *testing.T) {
	a := NewAdvisor(trace.NewNoopTracerProvider().Tracer("test"), "", "gpt-4o-mini")
	if a.Enabled() {
		t.Fatal("advisor without key should be disabled")
	}
	if _, err := a.Explain(context.Background(), sampleAnalysis()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestExplainReturnsCommentary(t *testing.T) {
	stub := &stubCompletions{reply: "  AAPL shows a strong bullish setup.  "}
	a := &Advisor{
		tracer:      trace.NewNoopTracerProvider().Tracer("test"),
		completions: stub,
		model:       "gpt-4o-mini",
	}

	text, err := a.Explain(context.Background(), sampleAnalysis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "AAPL shows a strong bullish setup." {
		t.Fatalf("unexpected commentary: %q", text)
	}
	if stub.lastParams.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", stub.lastParams.Model)
	}
	if len(stub.lastParams.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(stub.lastParams.Messages))
	}
}

func TestExplainPropagatesErrors(t *testing.T) {
	stub := &stubCompletions{err: errors.New("rate limited")}
	a := &Advisor{
		tracer:      trace.NewNoopTracerProvider().Tracer("test"),
		completions: stub,
		model:       "gpt-4o-mini",
	}
	if _, err := a.Explain(context.Background(), sampleAnalysis()); err == nil {
		t.Fatal("expected error from completion failure")
	}
	if _, err := a.Explain(context.Background(), nil); err == nil {
		t.Fatal("expected error on nil analysis")
	}
}

func TestExplainRejectsEmptyCompletion(t *testing.T) {
	stub := &stubCompletions{reply: "   "}
	a := &Advisor{
		tracer:      trace.NewNoopTracerProvider().Tracer("test"),
		completions: stub,
		model:       "gpt-4o-mini",
	}
	if _, err := a.Explain(context.Background(), sampleAnalysis()); err == nil {
		t.Fatal("expected error on blank commentary")
	}
}
