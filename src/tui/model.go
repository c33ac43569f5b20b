// Package tui provides the interactive terminal front-end for snpscope.
//
// MainModel owns one Bubble Tea event loop. Suggestion lookups go through a
// scheduler.Scheduler so only the newest answer reaches the screen; explicit
// searches go through a search.Coordinator and replace the results panel
// wholesale when they complete.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"snpscope/src/contracts"
	"snpscope/src/rsid"
	"snpscope/src/scheduler"
	"snpscope/src/search"
	"snpscope/src/store"
)

const (
	modeSingle = "Single search"
	modeBatch  = "Batch search"

	// batchInputHeight is the number of text rows in the batch field.
	batchInputHeight = 4
)

type focus int

const (
	focusSingle focus = iota
	focusBatch
)

type resultsView int

const (
	resultsEmpty resultsView = iota
	resultsSearch
	resultsHistory
)

// StatsSource reports the dataset loaded in the lookup service.
type StatsSource interface {
	Stats(ctx context.Context) (contracts.DatasetStats, error)
}

// HistorySource lists recent searches. store.Store satisfies it.
type HistorySource interface {
	RecentSearches(ctx context.Context, limit int) ([]contracts.SearchEvent, error)
}

// searchResultMsg carries an explicit search back into the loop.
type searchResultMsg struct {
	resp search.Response
}

type statsMsg struct {
	stats contracts.DatasetStats
	err   error
}

type historyMsg struct {
	events []contracts.SearchEvent
	err    error
}

// Option configures a MainModel.
type Option func(*MainModel)

// WithStats shows the dataset badge in the header.
func WithStats(s StatsSource) Option {
	return func(m *MainModel) { m.stats = s }
}

// WithHistory enables the recent searches view.
func WithHistory(h HistorySource) Option {
	return func(m *MainModel) { m.history = h }
}

// WithServiceURL labels the header with the lookup service address.
func WithServiceURL(url string) Option {
	return func(m *MainModel) { m.header = NewHeaderWithStyles(url, m.styles) }
}

// MainModel is the root Bubble Tea model.
type MainModel struct {
	coord   *search.Coordinator
	sched   *scheduler.Scheduler
	stats   StatsSource
	history HistorySource

	header   Header
	styles   *StyleConfig
	input    textinput.Model
	batch    textarea.Model
	results  viewport.Model
	progress ProgressModel

	focus    focus
	cursor   int // highlighted suggestion, -1 for none
	inFlight int

	shown          resultsView
	response       search.Response
	historyEvents  []contracts.SearchEvent
	historyAt      time.Time
	resultsContent string

	status      string
	statusColor lipgloss.Color

	width  int
	height int
	ready  bool
	now    func() time.Time
}

// NewMainModel creates the search UI over coord. Suggestions are scheduled
// by sched, which should wrap the same lookup service.
func NewMainModel(coord *search.Coordinator, sched *scheduler.Scheduler, opts ...Option) MainModel {
	styles := DefaultStyles()

	input := textinput.New()
	input.Placeholder = "rs53576"
	input.Prompt = "RSID › "
	input.CharLimit = 64
	input.Focus()

	batch := textarea.New()
	batch.Placeholder = "rs53576, rs7412\nrs429358"
	batch.ShowLineNumbers = false
	batch.CharLimit = 0
	batch.SetHeight(batchInputHeight)

	m := MainModel{
		coord:    coord,
		sched:    sched,
		header:   NewHeaderWithStyles("", styles),
		styles:   styles,
		input:    input,
		batch:    batch,
		results:  viewport.New(0, 0),
		progress: NewProgressModel(),
		focus:    focusSingle,
		cursor:   -1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the cursor blink and fetches dataset statistics.
func (m MainModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchStats())
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scheduler.FireMsg:
		return m, m.sched.OnFire(msg)

	case scheduler.SuggestionsMsg:
		if m.sched.Apply(msg) {
			m.cursor = -1
		}
		return m, nil

	case searchResultMsg:
		m.showResponse(msg.resp)
		return m, nil

	case statsMsg:
		if msg.err != nil {
			m.header.SetStatsError()
		} else {
			m.header.SetStats(msg.stats)
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.setStatus("Could not load history: "+msg.err.Error(), m.styles.ErrorColor)
			return m, nil
		}
		m.shown = resultsHistory
		m.historyEvents = msg.events
		m.historyAt = m.now()
		m.refreshResults()
		m.results.GotoTop()
		m.setStatus(fmt.Sprintf("%d recent searches", len(msg.events)), m.styles.TextSecondary)
		return m, nil

	case SpinnerTickMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "shift+tab":
		return m.toggleFocus()

	case "esc":
		if m.sched.Visible() || m.sched.Pending() {
			m.sched.Cancel()
			m.sched.Hide()
			m.cursor = -1
			return m, nil
		}
		if m.focus == focusBatch {
			return m.toggleFocus()
		}
		return m, nil

	case "ctrl+s":
		return m.submitBatch()

	case "ctrl+l":
		return m.clear()

	case "ctrl+r":
		return m, m.loadHistory()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	if m.focus == focusSingle {
		switch msg.String() {
		case "up":
			m.moveCursor(-1)
			return m, nil
		case "down":
			m.moveCursor(1)
			return m, nil
		case "enter":
			return m.submitSingle()
		}
	}

	return m.updateInputs(msg)
}

// updateInputs forwards msg to the focused field. Edits to the RSID field
// restart the suggestion quiet period.
func (m MainModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusBatch {
		m.batch, cmd = m.batch.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.cursor = -1
		return m, tea.Batch(cmd, m.sched.OnInput(after))
	}
	return m, cmd
}

func (m MainModel) toggleFocus() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusSingle {
		m.focus = focusBatch
		m.input.Blur()
		m.sched.Cancel()
		m.sched.Hide()
		m.cursor = -1
		m.header.SetMode(modeBatch)
		cmd = m.batch.Focus()
	} else {
		m.focus = focusSingle
		m.batch.Blur()
		m.header.SetMode(modeSingle)
		cmd = m.input.Focus()
	}
	m.resizeComponents()
	return m, cmd
}

func (m MainModel) submitSingle() (tea.Model, tea.Cmd) {
	raw := m.input.Value()
	if picked, ok := m.selectedSuggestion(); ok {
		raw = picked
		m.input.SetValue(picked)
		m.input.CursorEnd()
	}
	m.cursor = -1

	id := m.sched.OnExplicitSubmit(raw)
	stage := "Searching"
	if strings.TrimSpace(raw) != "" {
		stage = "Searching " + id.String()
	}
	return m, m.runSearch(search.SingleRequest(raw), stage)
}

func (m MainModel) submitBatch() (tea.Model, tea.Cmd) {
	text := m.batch.Value()
	m.sched.Cancel()
	m.sched.Hide()
	m.cursor = -1

	stage := fmt.Sprintf("Searching %d RSIDs", len(rsid.SplitBatch(text)))
	return m, m.runSearch(search.BatchRequest(text), stage)
}

// runSearch starts an explicit search. Searches are not serialized: each
// completion replaces whatever the panel shows.
func (m *MainModel) runSearch(req search.Request, stage string) tea.Cmd {
	m.inFlight++
	spin := m.progress.Start(stage)

	coord := m.coord
	run := func() tea.Msg {
		return searchResultMsg{resp: coord.Run(context.Background(), req)}
	}
	return tea.Batch(spin, run)
}

func (m *MainModel) showResponse(resp search.Response) {
	if m.inFlight > 0 {
		m.inFlight--
	}
	if m.inFlight == 0 {
		m.progress.Stop()
	}

	m.shown = resultsSearch
	m.response = resp
	m.refreshResults()
	m.results.GotoTop()

	switch {
	case resp.Single != nil:
		out := resp.Single
		switch out.Kind {
		case search.Found:
			m.setStatus("Found RSID: "+out.Display.RSID, m.styles.FoundColor)
		case search.NotFound:
			m.setStatus(out.Fallback.Message, m.styles.NotFoundColor)
		default:
			m.setStatus(out.Message, m.styles.ErrorColor)
		}
	case resp.Batch != nil:
		out := resp.Batch
		switch {
		case out.Failed():
			m.setStatus(out.Message, m.styles.ErrorColor)
		case out.Result.Complete():
			m.setStatus(out.Message, m.styles.FoundColor)
		default:
			m.setStatus(out.Message, m.styles.NotFoundColor)
		}
	}
}

func (m MainModel) clear() (tea.Model, tea.Cmd) {
	m.input.Reset()
	m.batch.Reset()
	m.sched.OnInput("")
	m.cursor = -1
	m.shown = resultsEmpty
	m.response = search.Response{}
	m.historyEvents = nil
	m.refreshResults()
	m.status = ""
	return m, nil
}

func (m *MainModel) setStatus(text string, color lipgloss.Color) {
	m.status = text
	m.statusColor = color
}

func (m MainModel) fetchStats() tea.Cmd {
	if m.stats == nil {
		return nil
	}
	stats := m.stats
	return func() tea.Msg {
		s, err := stats.Stats(context.Background())
		return statsMsg{stats: s, err: err}
	}
}

func (m *MainModel) loadHistory() tea.Cmd {
	if m.history == nil {
		m.setStatus("Search history is not enabled", m.styles.TextSecondary)
		return nil
	}
	history := m.history
	return func() tea.Msg {
		events, err := history.RecentSearches(context.Background(), store.DefaultLimit)
		return historyMsg{events: events, err: err}
	}
}

// refreshResults re-renders the panel for the current width.
func (m *MainModel) refreshResults() {
	var content string
	switch m.shown {
	case resultsSearch:
		if m.response.Batch != nil {
			content = m.renderBatch(*m.response.Batch, m.contentWidth())
		} else if m.response.Single != nil {
			content = m.renderSingle(*m.response.Single, m.contentWidth())
		}
	case resultsHistory:
		content = m.renderHistory(m.historyEvents, m.historyAt)
	}
	m.resultsContent = content
	m.results.SetContent(FitLines(content, m.results.Width))
}
