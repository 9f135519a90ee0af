package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"stock-pulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"
)

const systemPrompt = "You are a cautious markets analyst. You receive a finished " +
	"technical analysis as JSON. Explain it to a retail investor in at most three " +
	"short paragraphs. Do not invent numbers, do not change the verdict, and do " +
	"not give personalized financial advice."

var ErrNotConfigured = errors.New("advisor: no API key configured")

// completionClient is the slice of the OpenAI SDK the advisor needs.
type completionClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Advisor turns a finished analysis into a plain-language commentary.
// The commentary is presentation-only: the verdict, confidence and risk
// tier are computed upstream and passed through untouched.
type Advisor struct {
	tracer      trace.Tracer
	completions completionClient
	model       string
}

func NewAdvisor(tracer trace.Tracer, apiKey, model string) *Advisor {
	if apiKey == "" {
		return &Advisor{tracer: tracer, model: model}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Advisor{tracer: tracer, completions: &client.Chat.Completions, model: model}
}

// Enabled reports whether a backing model is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.completions != nil
}

// Explain produces a short narrative for the analysis. It returns
// ErrNotConfigured when no API key was provided so callers can degrade
// gracefully.
func (a *Advisor) Explain(ctx context.Context, analysis *domain.Analysis) (string, error) {
	if !a.Enabled() {
		return "", ErrNotConfigured
	}
	if analysis == nil {
		return "", errors.New("advisor: nil analysis")
	}

	ctx, span := a.tracer.Start(ctx, "advisor.Explain")
	defer span.End()

	payload, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	completion, err := a.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(payload)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("advisor: empty completion")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("advisor: blank commentary")
	}
	return text, nil
}
