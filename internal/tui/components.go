package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"stock-pulse/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

// Quote is one watchlist row derived from the two most recent candles.
type Quote struct {
	Ticker       string
	Close        float64
	DayChangePct float64
	Volume       float64
}

// FormatQuote renders a watchlist quote as a single line.
func FormatQuote(q Quote) string {
	changeStyle := PriceZeroStyle
	if q.DayChangePct > 0 {
		changeStyle = PriceUpStyle
	} else if q.DayChangePct < 0 {
		changeStyle = PriceDownStyle
	}

	sign := ""
	if q.DayChangePct > 0 {
		sign = "+"
	}

	return fmt.Sprintf("%-6s %10s  %s  Vol: %s",
		q.Ticker,
		formatUSD(q.Close),
		changeStyle.Render(fmt.Sprintf("%s%.1f%%", sign, q.DayChangePct)),
		formatVolume(q.Volume),
	)
}

// FormatAnalysisLine renders a persisted analysis as a single line.
func FormatAnalysisLine(a domain.Analysis) string {
	if a.Signal == nil || a.Assessment == nil {
		return fmt.Sprintf("#%-4d %-5s (incomplete)", a.ID, a.Ticker)
	}

	sigStyle := SignalNeutralStyle
	switch a.Signal.Strength.SignalType {
	case domain.SignalBullish:
		sigStyle = SignalBullishStyle
	case domain.SignalBearish:
		sigStyle = SignalBearishStyle
	}

	riskStyle := riskLevelStyle(a.Assessment.OverallRisk)

	action := SubtextStyle.Render("watch")
	if a.Assessment.IsActionable {
		action = HeaderStyle.Render("ACT")
	}

	return fmt.Sprintf("#%-4d %-5s %s %3.0f%% risk %-8s %-5s %s",
		a.ID,
		a.Ticker,
		sigStyle.Render(fmt.Sprintf("%-7s", a.Signal.Strength.SignalType)),
		a.Signal.Strength.Confidence*100,
		riskStyle.Render(string(a.Assessment.OverallRisk)),
		action,
		a.CreatedAt.Format(time.RFC822),
	)
}

func riskLevelStyle(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskHigh:
		return RiskHighStyle
	case domain.RiskModerate:
		return RiskModStyle
	}
	return RiskLowStyle
}

// RenderHeatMap renders a colored grid showing day change for each ticker.
func RenderHeatMap(quotes []Quote, width int) string {
	if len(quotes) == 0 {
		return SubtextStyle.Render("No price data")
	}

	cellWidth := 8
	cols := width / cellWidth
	if cols < 1 {
		cols = 1
	}

	var rows []string
	var row []string
	for i, q := range quotes {
		bg := HeatNeutral
		if q.DayChangePct > 0 {
			bg = heatColorScale(q.DayChangePct, 5, HeatGreen)
		} else if q.DayChangePct < 0 {
			bg = heatColorScale(-q.DayChangePct, 5, HeatRed)
		}

		cell := lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Width(cellWidth - 1).
			Align(lipgloss.Center).
			Render(q.Ticker)

		row = append(row, cell)
		if (i+1)%cols == 0 || i == len(quotes)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	return strings.Join(rows, "\n")
}

// RenderConfidenceBar renders an ASCII bar for a signal confidence value.
func RenderConfidenceBar(label string, confidence float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(confidence * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	style := ConfidenceHighStyle
	if confidence < 0.5 {
		style = ConfidenceLowStyle
	} else if confidence < 0.75 {
		style = ConfidenceMidStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-10s %s %.0f%%", label, bar, confidence*100)
}

// heatColorScale produces a color scaled by magnitude.
func heatColorScale(magnitude, maxMagnitude float64, baseColor lipgloss.Color) lipgloss.Color {
	intensity := magnitude / maxMagnitude
	if intensity > 1 {
		intensity = 1
	}
	if intensity < 0.1 {
		return HeatNeutral
	}
	return baseColor
}

func formatUSD(v float64) string {
	if v >= 1000 {
		return "$" + addCommas(fmt.Sprintf("%.0f", v))
	}
	if v >= 1 {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("$%.4f", v)
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(ch)
	}
	return result.String()
}

func formatVolume(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
