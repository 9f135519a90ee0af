package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stock-pulse/internal/domain"
	"stock-pulse/internal/service"

	tele "gopkg.in/telebot.v3"
)

type AnalysisQuerier interface {
	AnalyzeTicker(ctx context.Context, ticker string, tolerance domain.RiskTolerance, horizon domain.TimeHorizon) (*domain.Analysis, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.Analysis, error)
}

type AnalysisExplainer interface {
	Enabled() bool
	Explain(ctx context.Context, a *domain.Analysis) (string, error)
}

func StartTelegramBot(
	token string,
	analysisService AnalysisQuerier,
	explainer AnalysisExplainer,
	defaultTolerance domain.RiskTolerance,
) *AlertDispatcher {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/tickers", func(c tele.Context) error {
		return c.Send("Watchlist: " + strings.Join(domain.Watchlist, ", "))
	})

	b.Handle("/analyze", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}

		ticker, tolerance, err := parseAnalyzeArgs(c.Args(), defaultTolerance)
		if err != nil {
			return c.Send(fmt.Sprintf("Usage: /analyze AAPL [conservative|moderate|aggressive]\nSupported: %s", strings.Join(domain.Watchlist, ", ")))
		}

		analysis, err := analysisService.AnalyzeTicker(context.Background(), ticker, tolerance, domain.HorizonMedium)
		if err != nil {
			if errors.Is(err, service.ErrInsufficientHistory) {
				return c.Send(fmt.Sprintf("Not enough price history for %s yet, try again later.", ticker))
			}
			return c.Send(fmt.Sprintf("Error analyzing %s: %v", ticker, err))
		}
		return c.Send(formatAnalysis(analysis))
	})

	b.Handle("/analyses", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}

		filter := domain.AnalysisFilter{Limit: 5}
		if args := c.Args(); len(args) > 0 {
			ticker := strings.ToUpper(strings.TrimSpace(args[0]))
			if _, ok := domain.SupportedTickers[ticker]; !ok {
				return c.Send(fmt.Sprintf("Unknown ticker: %s\nSupported: %s", ticker, strings.Join(domain.Watchlist, ", ")))
			}
			filter.Ticker = ticker
		}

		analyses, err := analysisService.ListAnalyses(context.Background(), filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching analyses: %v", err))
		}
		if len(analyses) == 0 {
			return c.Send("No stored analyses yet.")
		}

		if err := c.Send("Latest analyses:"); err != nil {
			return err
		}
		for i := range analyses {
			if err := c.Send(formatAnalysis(&analyses[i])); err != nil {
				return err
			}
		}
		return nil
	})

	b.Handle("/explain", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}
		if explainer == nil || !explainer.Enabled() {
			return c.Send("Advisor not configured. Set OPENAI_API_KEY to enable.")
		}

		ticker, tolerance, err := parseAnalyzeArgs(c.Args(), defaultTolerance)
		if err != nil {
			return c.Send("Usage: /explain AAPL [conservative|moderate|aggressive]")
		}

		_ = c.Notify(tele.Typing)

		analysis, err := analysisService.AnalyzeTicker(context.Background(), ticker, tolerance, domain.HorizonMedium)
		if err != nil {
			return c.Send(fmt.Sprintf("Error analyzing %s: %v", ticker, err))
		}

		commentary, err := explainer.Explain(context.Background(), analysis)
		if err != nil {
			log.Printf("advisor error for chat %d: %v", c.Chat().ID, err)
			return c.Send(formatAnalysis(analysis))
		}
		if len(commentary) > 4000 {
			commentary = commentary[:4000] + "\n\n[truncated]"
		}
		return c.Send(formatAnalysis(analysis) + "\n\n" + commentary)
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Actionable analysis alerts enabled for this chat.")
			}
			return c.Send("Alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Actionable analysis alerts disabled for this chat.")
			}
			return c.Send("Alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseAnalyzeArgs(args []string, defaultTolerance domain.RiskTolerance) (string, domain.RiskTolerance, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", "", errors.New("expected ticker and optional tolerance")
	}

	ticker := strings.ToUpper(strings.TrimSpace(args[0]))
	if _, ok := domain.SupportedTickers[ticker]; !ok {
		return "", "", fmt.Errorf("unsupported ticker: %s", ticker)
	}

	tolerance := defaultTolerance
	if !tolerance.IsValid() {
		tolerance = domain.ToleranceModerate
	}
	if len(args) == 2 {
		parsed, err := domain.ParseRiskTolerance(args[1])
		if err != nil {
			return "", "", err
		}
		tolerance = parsed
	}
	return ticker, tolerance, nil
}

func formatAnalysis(a *domain.Analysis) string {
	if a == nil {
		return "No analysis available."
	}

	lines := []string{fmt.Sprintf("%s (%s)", a.Ticker, a.Tolerance)}
	if a.Signal != nil {
		lines = append(lines, fmt.Sprintf(
			"Signal: %s (%.0f%% confidence, %s)",
			a.Signal.Strength.SignalType,
			a.Signal.Strength.Confidence*100,
			a.Signal.Strength.Label,
		))
		if len(a.Signal.Reasoning.PrimaryFactors) > 0 {
			lines = append(lines, "Why: "+a.Signal.Reasoning.PrimaryFactors[0])
		}
	}
	if a.Assessment != nil {
		verdict := "not actionable"
		if a.Assessment.IsActionable {
			verdict = "actionable"
		}
		lines = append(lines, fmt.Sprintf("Risk: %s (%s)", a.Assessment.OverallRisk, verdict))
		for _, f := range a.Assessment.RiskFactors {
			lines = append(lines, fmt.Sprintf("- %s [%s]", f.Name, f.Severity))
		}
	}
	if !a.CreatedAt.IsZero() {
		lines = append(lines, "At: "+a.CreatedAt.UTC().Format(time.RFC822))
	}
	return strings.Join(lines, "\n")
}
