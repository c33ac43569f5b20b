// Package scheduler debounces keystrokes into partial-match lookups and makes
// sure only the newest suggestion response reaches the screen.
//
// A Scheduler is driven from a Bubble Tea Update loop. Its state is only
// touched there, so it needs no locks: timers and network calls run as
// tea.Cmd values and come back as FireMsg and SuggestionsMsg.
package scheduler

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"snpscope/src/logger"
	"snpscope/src/rsid"
)

// DefaultQuietPeriod is how long typing must pause before a lookup is sent.
const DefaultQuietPeriod = 300 * time.Millisecond

// Token orders dispatched suggestion queries. It is assigned when a query is
// sent, never when a timer is armed.
type Token uint64

// PartialLookup is the one service call the scheduler makes.
type PartialLookup interface {
	LookupPartial(ctx context.Context, prefix rsid.Identifier) ([]rsid.Identifier, error)
}

// FireMsg is delivered when a quiet period elapses.
type FireMsg struct {
	generation uint64
}

// SuggestionsMsg carries a partial-match response back into the loop.
type SuggestionsMsg struct {
	Token   Token
	Query   rsid.Identifier
	Matches []rsid.Identifier
	Err     error
}

// Scheduler owns the suggestion list.
type Scheduler struct {
	lookup PartialLookup
	quiet  time.Duration
	log    logger.Logger

	value      string
	generation uint64
	pending    bool

	latest     Token
	dispatched int
	// Responses with tokens up to discardThrough were in flight when the
	// list was dismissed and are never applied.
	discardThrough Token

	suggestions []rsid.Identifier
	visible     bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler backed by lookup.
func New(lookup PartialLookup, opts ...Option) *Scheduler {
	s := &Scheduler{
		lookup: lookup,
		quiet:  DefaultQuietPeriod,
		log:    logger.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnInput records the field's new value and restarts the quiet period.
// Empty input clears the suggestions immediately and schedules nothing.
func (s *Scheduler) OnInput(value string) tea.Cmd {
	s.value = value
	s.Cancel()

	if strings.TrimSpace(value) == "" {
		s.hide()
		return nil
	}

	s.pending = true
	gen := s.generation
	return tea.Tick(s.quiet, func(time.Time) tea.Msg {
		return FireMsg{generation: gen}
	})
}

// OnFire dispatches a lookup for the current value if msg belongs to the
// pending timer. Canceled timers are ignored and consume no token.
func (s *Scheduler) OnFire(msg FireMsg) tea.Cmd {
	if !s.pending || msg.generation != s.generation {
		return nil
	}
	s.pending = false

	query := rsid.Normalize(s.value)
	s.latest++
	s.dispatched++
	token := s.latest
	s.log.Debug("suggest dispatch token=%d query=%s", token, query)

	lookup := s.lookup
	return func() tea.Msg {
		matches, err := lookup.LookupPartial(context.Background(), query)
		return SuggestionsMsg{Token: token, Query: query, Matches: matches, Err: err}
	}
}

// OnExplicitSubmit cancels any pending fire, hides the suggestions and
// returns the normalized identifier for an immediate search.
func (s *Scheduler) OnExplicitSubmit(value string) rsid.Identifier {
	s.value = value
	s.Cancel()
	s.hide()
	return rsid.Normalize(value)
}

// Apply installs msg if it answers the most recently dispatched query and
// reports whether it did. Errors and empty answers hide the list.
func (s *Scheduler) Apply(msg SuggestionsMsg) bool {
	if msg.Token != s.latest {
		s.log.Debug("suggest drop stale token=%d latest=%d", msg.Token, s.latest)
		return false
	}
	if msg.Token <= s.discardThrough {
		s.log.Debug("suggest drop dismissed token=%d", msg.Token)
		return false
	}

	if msg.Err != nil {
		s.log.Debug("suggest token=%d failed: %v", msg.Token, msg.Err)
		s.hide()
		return true
	}
	if len(msg.Matches) == 0 {
		s.hide()
		return true
	}

	s.suggestions = append([]rsid.Identifier(nil), msg.Matches...)
	s.visible = true
	return true
}

// Update routes scheduler messages; other messages are ignored.
func (s *Scheduler) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case FireMsg:
		return s.OnFire(msg)
	case SuggestionsMsg:
		s.Apply(msg)
	}
	return nil
}

// Cancel stops the pending timer, if any.
func (s *Scheduler) Cancel() {
	s.generation++
	s.pending = false
}

// Hide closes the suggestion list without touching the pending timer.
// Responses already in flight are discarded when they arrive.
func (s *Scheduler) Hide() { s.hide() }

func (s *Scheduler) hide() {
	s.suggestions = nil
	s.visible = false
	s.discardThrough = s.latest
}

// Suggestions returns the visible suggestion list.
func (s *Scheduler) Suggestions() []rsid.Identifier {
	if !s.visible {
		return nil
	}
	return s.suggestions
}

// Visible reports whether suggestions are showing.
func (s *Scheduler) Visible() bool { return s.visible }

// Pending reports whether a quiet period is running.
func (s *Scheduler) Pending() bool { return s.pending }

// Latest is the most recently dispatched token (0 before any dispatch).
func (s *Scheduler) Latest() Token { return s.latest }

// Dispatched counts lookups actually sent.
func (s *Scheduler) Dispatched() int { return s.dispatched }

// QuietPeriod returns the debounce interval in use.
func (s *Scheduler) QuietPeriod() time.Duration { return s.quiet }
