package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
)

// ViewState represents the current view state of the TUI
type ViewState int

const (
	// ViewInput shows the query form
	ViewInput ViewState = iota
	// ViewRunning is shown while the pipeline runs
	ViewRunning
	// ViewResult lists the records and the summary
	ViewResult
)

// Searcher runs the relay pipeline.
type Searcher interface {
	Search(ctx context.Context, req relay.SearchRequest) (*relay.Outcome, error)
	Backend() catalog.Backend
}

// RecordItem adapts a catalog record to list.Item.
type RecordItem struct {
	record catalog.Record
}

// Title returns the record title (implements list.DefaultItem)
func (r RecordItem) Title() string { return r.record.Title }

// Description returns a one-line meta summary (implements list.DefaultItem)
func (r RecordItem) Description() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.record.Authors, r.record.Year, r.record.Format} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " — ")
}

// FilterValue returns the filter value (implements list.Item)
func (r RecordItem) FilterValue() string { return r.record.Title }

// searchDoneMsg carries the pipeline result back into Update.
type searchDoneMsg struct {
	outcome *relay.Outcome
	err     error
}

// input field order
const (
	inputQuery = iota
	inputLanguage
	inputYearFrom
	inputYearTo
)

// Model is the main TUI model following the Bubble Tea architecture
type Model struct {
	state    ViewState
	searcher Searcher
	timeout  time.Duration

	inputs     []textinput.Model
	focusIndex int

	spinner spinner.Model
	results list.Model

	outcome *relay.Outcome
	err     error

	width  int
	height int

	quitting bool
}

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Tab   key.Binding
	Quit  key.Binding
	// QuitAnywhere also works while typing
	QuitAnywhere key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "new search"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "next field"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	QuitAnywhere: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// NewModel creates a TUI model searching through searcher.
// timeout bounds one whole pipeline run, 0 disables it.
func NewModel(searcher Searcher, timeout time.Duration) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(secondaryColor)

	results := list.New(nil, delegate, 0, 0)
	results.SetShowStatusBar(false)
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)
	results.Styles.Title = GetHeaderStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = GetProgressStyle()

	return Model{
		state:    ViewInput,
		searcher: searcher,
		timeout:  timeout,
		inputs:   createSearchInputs(),
		spinner:  sp,
		results:  results,
	}
}

func createSearchInputs() []textinput.Model {
	inputs := make([]textinput.Model, 4)

	inputs[inputQuery] = textinput.New()
	inputs[inputQuery].Placeholder = "Recent articles on climate resilience in urban planning"
	inputs[inputQuery].Focus()
	inputs[inputQuery].CharLimit = 512
	inputs[inputQuery].Width = 60
	inputs[inputQuery].Prompt = "🔎 "
	inputs[inputQuery].PromptStyle = GetInputLabelStyle()

	inputs[inputLanguage] = textinput.New()
	inputs[inputLanguage].Placeholder = "English (optional)"
	inputs[inputLanguage].CharLimit = 64
	inputs[inputLanguage].Width = 30
	inputs[inputLanguage].Prompt = "🌐 "
	inputs[inputLanguage].PromptStyle = GetInputLabelStyle()

	for _, i := range []int{inputYearFrom, inputYearTo} {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = "YYYY (optional)"
		inputs[i].CharLimit = 4
		inputs[i].Width = 10
		inputs[i].Prompt = "📅 "
		inputs[i].PromptStyle = GetInputLabelStyle()
	}

	return inputs
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, m.listHeight())
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case ViewInput:
			return m.handleInputView(msg)
		case ViewResult:
			return m.handleResultView(msg)
		case ViewRunning:
			if key.Matches(msg, keys.QuitAnywhere) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		if m.state == ViewRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case searchDoneMsg:
		return m.showResult(msg), nil
	}

	return m, nil
}

func (m Model) listHeight() int {
	// leave room for the header, summary and help
	if h := m.height - 14; h > 4 {
		return h
	}
	return 4
}

func (m Model) handleInputView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.QuitAnywhere):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		step := 1
		if msg.String() == "shift+tab" {
			step = len(m.inputs) - 1
		}
		m.focusIndex = (m.focusIndex + step) % len(m.inputs)
		for i := range m.inputs {
			if i == m.focusIndex {
				m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		req, ok := m.request()
		if !ok {
			return m, nil
		}
		m.state = ViewRunning
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.searchCmd(req))
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) handleResultView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		m.state = ViewInput
		m.outcome = nil
		m.err = nil
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// request builds a SearchRequest from the inputs, ok is false for a blank query.
func (m Model) request() (relay.SearchRequest, bool) {
	query := strings.TrimSpace(m.inputs[inputQuery].Value())
	if query == "" {
		return relay.SearchRequest{}, false
	}

	return relay.SearchRequest{
		Query: query,
		Overrides: catalog.Filters{
			Language: strings.TrimSpace(m.inputs[inputLanguage].Value()),
			YearFrom: strings.TrimSpace(m.inputs[inputYearFrom].Value()),
			YearTo:   strings.TrimSpace(m.inputs[inputYearTo].Value()),
		},
	}, true
}

func (m Model) searchCmd(req relay.SearchRequest) tea.Cmd {
	searcher, timeout := m.searcher, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		out, err := searcher.Search(ctx, req)
		return searchDoneMsg{outcome: out, err: err}
	}
}

func (m Model) showResult(msg searchDoneMsg) Model {
	m.state = ViewResult
	m.outcome = msg.outcome
	m.err = msg.err

	items := []list.Item{}
	if msg.outcome != nil {
		for _, r := range msg.outcome.Records {
			items = append(items, RecordItem{record: r})
		}
		m.results.Title = fmt.Sprintf("%s results (%d)", m.searcher.Backend().DisplayName(), len(items))
	}
	m.results.SetItems(items)
	m.results.Select(0)
	return m
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return GetSubtitleStyle().Render("Goodbye! 👋\n")
	}

	switch m.state {
	case ViewInput:
		return m.renderInput()
	case ViewRunning:
		return m.renderRunning()
	case ViewResult:
		return m.renderResult()
	default:
		return "Unknown state"
	}
}

func (m Model) renderInput() string {
	var sb strings.Builder

	title := GetHeaderStyle().Render("📚 " + m.searcher.Backend().DisplayName() + " AI Search")
	sb.WriteString(title + "\n\n")

	labels := []string{"Search (natural language):", "Language:", "Year from:", "Year to:"}
	for i, input := range m.inputs {
		sb.WriteString(GetInputLabelStyle().Render(labels[i]) + "\n")
		sb.WriteString(input.View() + "\n\n")
	}

	sb.WriteString(GetHelpStyle().Render("tab: next field • enter: search • ctrl+c: quit"))
	return GetBoxStyle().Render(sb.String())
}

func (m Model) renderRunning() string {
	return GetBoxStyle().Render(
		lipgloss.JoinVertical(lipgloss.Center,
			m.spinner.View()+" Searching...",
			GetSubtitleStyle().Render("translating, querying the catalog and summarizing"),
		),
	)
}

func (m Model) renderResult() string {
	help := GetHelpStyle().Render("↑/↓ browse • esc: new search • q: quit")

	if m.err != nil {
		return GetBoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left,
			GetErrorStyle().Render("❌ "+m.err.Error()), "", help))
	}
	if m.outcome == nil {
		return "No result"
	}

	status := GetStatusBarStyle().Render("q: " + m.outcome.Translated.Q + "  " + facetLine(m.outcome.Filters))

	if m.outcome.Failed() {
		return lipgloss.JoinVertical(lipgloss.Left,
			status, "",
			GetErrorStyle().Render("❌ "+m.outcome.Error), "", help)
	}

	var selected string
	if item, ok := m.results.SelectedItem().(RecordItem); ok {
		selected = GetSubtitleStyle().Render(item.record.Link)
		if item.record.Snippet != "" {
			selected = item.record.Snippet + "\n" + selected
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		status,
		m.results.View(),
		selected,
		GetSummaryStyle().Render(m.outcome.Summary),
		help,
	)
}

func facetLine(f catalog.Filters) string {
	facets := f.Facets()
	parts := make([]string, 0, len(facets))
	for _, facet := range facets {
		parts = append(parts, facet.Name+"="+facet.Value)
	}
	return strings.Join(parts, " ")
}
