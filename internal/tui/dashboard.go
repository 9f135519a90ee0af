package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-pulse/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type quotesMsg []Quote
type quotesErrMsg struct{ err error }
type latestAnalysesMsg []domain.Analysis
type latestAnalysesErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel is the Bubble Tea model for the watchlist dashboard screen.
type DashboardModel struct {
	services Services
	quotes   []Quote
	analyses []domain.Analysis
	loading  bool
	err      error
	width    int
	height   int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchQuotesCmd(),
		m.fetchAnalysesCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case quotesMsg:
		m.quotes = []Quote(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case quotesErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case latestAnalysesMsg:
		m.analyses = []domain.Analysis(msg)
		return m, nil

	case latestAnalysesErrMsg:
		// Non-critical; quotes are more important.
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(
			m.fetchQuotesCmd(),
			m.fetchAnalysesCmd(),
			m.tickCmd(),
		)
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.loading && len(m.quotes) == 0 {
		return SubtextStyle.Render("Loading watchlist...")
	}
	if m.err != nil && len(m.quotes) == 0 {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var sections []string

	quoteTable := m.renderQuoteTable()
	heatMap := m.renderHeatMapSection()

	quoteWidth := m.width*2/3 - 2
	if quoteWidth < 40 {
		quoteWidth = 40
	}
	heatWidth := m.width - quoteWidth - 4
	if heatWidth < 15 {
		heatWidth = 15
	}

	quoteBox := BorderStyle.Width(quoteWidth).Render(quoteTable)
	heatBox := BorderStyle.Width(heatWidth).Render(heatMap)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, quoteBox, heatBox)
	sections = append(sections, topRow)

	analysisSection := m.renderAnalyses()
	analysisBox := BorderStyle.Width(m.width - 2).Render(analysisSection)
	sections = append(sections, analysisBox)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Quotes returns the current quotes (for testing).
func (m DashboardModel) Quotes() []Quote { return m.quotes }

// Analyses returns the current analyses (for testing).
func (m DashboardModel) Analyses() []domain.Analysis { return m.analyses }

func (m DashboardModel) renderQuoteTable() string {
	header := HeaderStyle.Render("  Watchlist")
	var lines []string
	lines = append(lines, header)
	lines = append(lines, SubtextStyle.Render("  Ticker       Close       Day       Volume"))
	lines = append(lines, SubtextStyle.Render(strings.Repeat("─", 55)))

	for _, q := range m.quotes {
		lines = append(lines, "  "+FormatQuote(q))
	}

	if len(m.quotes) == 0 {
		lines = append(lines, SubtextStyle.Render("  No price data available"))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderHeatMapSection() string {
	header := HeaderStyle.Render("  Heat Map")
	heatWidth := m.width/3 - 4
	if heatWidth < 15 {
		heatWidth = 15
	}
	heatMap := RenderHeatMap(m.quotes, heatWidth)
	return header + "\n" + heatMap
}

func (m DashboardModel) renderAnalyses() string {
	header := HeaderStyle.Render("  Latest Analyses")
	var lines []string
	lines = append(lines, header)

	count := len(m.analyses)
	if count > 10 {
		count = 10
	}

	for i := 0; i < count; i++ {
		lines = append(lines, "  "+FormatAnalysisLine(m.analyses[i]))
	}

	if len(m.analyses) == 0 {
		lines = append(lines, SubtextStyle.Render("  No analyses yet"))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) fetchQuotesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Market == nil {
			return quotesErrMsg{err: fmt.Errorf("market service not available")}
		}

		quotes := make([]Quote, 0, len(domain.Watchlist))
		for _, ticker := range domain.Watchlist {
			points, err := m.services.Market.GetPriceHistory(context.Background(), ticker, 2)
			if err != nil {
				return quotesErrMsg{err: err}
			}
			if len(points) == 0 {
				continue
			}
			quotes = append(quotes, buildQuote(ticker, points))
		}
		return quotesMsg(quotes)
	}
}

// buildQuote derives a quote from the most recent candles, newest last.
func buildQuote(ticker string, points []domain.PricePoint) Quote {
	latest := points[len(points)-1]
	q := Quote{
		Ticker: ticker,
		Close:  latest.Close,
		Volume: latest.Volume,
	}
	if len(points) >= 2 {
		prev := points[len(points)-2]
		if prev.Close > 0 {
			q.DayChangePct = (latest.Close - prev.Close) / prev.Close * 100
		}
	}
	return q
}

func (m DashboardModel) fetchAnalysesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Analyses == nil {
			return latestAnalysesErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		analyses, err := m.services.Analyses.ListAnalyses(context.Background(), domain.AnalysisFilter{Limit: 10})
		if err != nil {
			return latestAnalysesErrMsg{err: err}
		}
		return latestAnalysesMsg(analyses)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
