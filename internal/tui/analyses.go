package tui

import (
	"context"
	"fmt"
	"strings"

	"stock-pulse/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Analysis explorer message types.
type filteredAnalysesMsg []domain.Analysis
type filteredAnalysesErrMsg struct{ err error }
type analysisRanMsg struct{ analysis *domain.Analysis }
type analysisRunErrMsg struct{ err error }

var (
	tickerOptions     = append([]string{"ALL"}, domain.Watchlist...)
	signalOptions     = []string{"ALL", "BULLISH", "BEARISH", "NEUTRAL"}
	actionableOptions = []string{"ALL", "YES", "NO"}
)

// AnalysisExplorerModel is the Bubble Tea model for the analysis explorer screen.
type AnalysisExplorerModel struct {
	services      Services
	analyses      []domain.Analysis
	tickerIdx     int
	signalIdx     int
	actionableIdx int
	scrollOffset  int
	loading       bool
	running       bool
	err           error
	notice        string
	width         int
	height        int
}

// NewAnalysisExplorerModel creates a new analysis explorer model.
func NewAnalysisExplorerModel(svc Services) AnalysisExplorerModel {
	return AnalysisExplorerModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial analysis fetch.
func (m AnalysisExplorerModel) Init() tea.Cmd {
	return m.fetchAnalysesCmd()
}

// Update handles incoming messages.
func (m AnalysisExplorerModel) Update(msg tea.Msg) (AnalysisExplorerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case filteredAnalysesMsg:
		m.analyses = []domain.Analysis(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case filteredAnalysesErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case analysisRanMsg:
		m.running = false
		if msg.analysis != nil {
			m.notice = fmt.Sprintf("Analyzed %s", msg.analysis.Ticker)
		}
		m.loading = true
		return m, m.fetchAnalysesCmd()

	case analysisRunErrMsg:
		m.running = false
		m.notice = fmt.Sprintf("Analysis failed: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterTicker):
			m.tickerIdx = (m.tickerIdx + 1) % len(tickerOptions)
			m.loading = true
			return m, m.fetchAnalysesCmd()

		case key.Matches(msg, DefaultKeyMap.FilterSignal):
			m.signalIdx = (m.signalIdx + 1) % len(signalOptions)
			m.loading = true
			return m, m.fetchAnalysesCmd()

		case key.Matches(msg, DefaultKeyMap.FilterActionable):
			m.actionableIdx = (m.actionableIdx + 1) % len(actionableOptions)
			m.loading = true
			return m, m.fetchAnalysesCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchAnalysesCmd()

		case key.Matches(msg, DefaultKeyMap.RunAnalysis):
			if m.tickerIdx == 0 || m.running {
				m.notice = "Select a ticker filter first (t), then press enter"
				return m, nil
			}
			m.running = true
			m.notice = fmt.Sprintf("Analyzing %s...", tickerOptions[m.tickerIdx])
			return m, m.runAnalysisCmd(tickerOptions[m.tickerIdx])

		case msg.String() == "j" || msg.String() == "down":
			maxVisible := m.visibleRows()
			if m.scrollOffset < len(m.analyses)-maxVisible {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the analysis explorer.
func (m AnalysisExplorerModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Analysis Explorer"))
	sections = append(sections, "")

	sections = append(sections, m.renderFilters())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.notice != "" {
		sections = append(sections, SubtextStyle.Render("  "+m.notice))
	}

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if len(m.analyses) == 0 {
		sections = append(sections, SubtextStyle.Render("  No analyses match the current filters"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-5s %-6s %-8s %-5s %-9s %-6s %s",
			"ID", "Ticker", "Signal", "Conf", "Risk", "Call", "Time"),
	))

	maxVisible := m.visibleRows()
	end := m.scrollOffset + maxVisible
	if end > len(m.analyses) {
		end = len(m.analyses)
	}

	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatAnalysisLine(m.analyses[i]))
	}

	if len(m.analyses) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.analyses)),
		))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [t] ticker  [s] signal  [a] actionable  [enter] analyze  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *AnalysisExplorerModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// FilterState returns current filter indices (for testing).
func (m AnalysisExplorerModel) FilterState() (tickerIdx, signalIdx, actionableIdx int) {
	return m.tickerIdx, m.signalIdx, m.actionableIdx
}

// AnalysisCount returns the number of loaded analyses (for testing).
func (m AnalysisExplorerModel) AnalysisCount() int { return len(m.analyses) }

func (m AnalysisExplorerModel) renderFilters() string {
	tickerChip := m.renderChip("Ticker", tickerOptions, m.tickerIdx)
	signalChip := m.renderChip("Signal", signalOptions, m.signalIdx)
	actChip := m.renderChip("Act", actionableOptions, m.actionableIdx)
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, tickerChip, "  ", signalChip, "  ", actChip)
}

func (m AnalysisExplorerModel) renderChip(label string, options []string, active int) string {
	var parts []string
	parts = append(parts, SubtextStyle.Render(label+": "))
	for i, opt := range options {
		display := opt
		if len(display) > 6 {
			display = display[:6]
		}
		if i == active {
			parts = append(parts, ActiveTabStyle.Render(display))
		} else {
			parts = append(parts, SubtextStyle.Render(display))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m AnalysisExplorerModel) buildFilter() domain.AnalysisFilter {
	filter := domain.AnalysisFilter{Limit: 100}

	if m.tickerIdx > 0 && m.tickerIdx < len(tickerOptions) {
		filter.Ticker = tickerOptions[m.tickerIdx]
	}

	if m.signalIdx > 0 && m.signalIdx < len(signalOptions) {
		filter.SignalType = domain.SignalType(signalOptions[m.signalIdx])
	}

	if m.actionableIdx > 0 && m.actionableIdx < len(actionableOptions) {
		actionable := actionableOptions[m.actionableIdx] == "YES"
		filter.Actionable = &actionable
	}

	return filter
}

func (m AnalysisExplorerModel) fetchAnalysesCmd() tea.Cmd {
	filter := m.buildFilter()
	return func() tea.Msg {
		if m.services.Analyses == nil {
			return filteredAnalysesErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		analyses, err := m.services.Analyses.ListAnalyses(context.Background(), filter)
		if err != nil {
			return filteredAnalysesErrMsg{err: err}
		}
		return filteredAnalysesMsg(analyses)
	}
}

func (m AnalysisExplorerModel) runAnalysisCmd(ticker string) tea.Cmd {
	tolerance := m.services.EffectiveTolerance()
	return func() tea.Msg {
		if m.services.Analyses == nil {
			return analysisRunErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		analysis, err := m.services.Analyses.AnalyzeTicker(context.Background(), ticker, tolerance, domain.HorizonMedium)
		if err != nil {
			return analysisRunErrMsg{err: err}
		}
		return analysisRanMsg{analysis: analysis}
	}
}

func (m AnalysisExplorerModel) visibleRows() int {
	// Account for header, filters, table header, help footer
	available := m.height - 10
	if available < 5 {
		return 5
	}
	return available
}
