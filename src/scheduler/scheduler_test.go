package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"snpscope/src/rsid"
)

const testQuiet = 5 * time.Millisecond

type fakeLookup struct {
	mu      sync.Mutex
	queries []rsid.Identifier
	answers map[rsid.Identifier][]rsid.Identifier
	err     error
}

func (f *fakeLookup) LookupPartial(_ context.Context, prefix rsid.Identifier) ([]rsid.Identifier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, prefix)
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[prefix], nil
}

func (f *fakeLookup) calls() []rsid.Identifier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rsid.Identifier(nil), f.queries...)
}

func fire(t *testing.T, cmd tea.Cmd) FireMsg {
	t.Helper()
	require.NotNil(t, cmd, "expected a timer command")
	msg, ok := cmd().(FireMsg)
	require.True(t, ok, "timer should yield FireMsg")
	return msg
}

func suggestions(t *testing.T, cmd tea.Cmd) SuggestionsMsg {
	t.Helper()
	require.NotNil(t, cmd, "expected a dispatch command")
	msg, ok := cmd().(SuggestionsMsg)
	require.True(t, ok, "dispatch should yield SuggestionsMsg")
	return msg
}

func TestScheduler_DefaultQuietPeriod(t *testing.T) {
	s := New(&fakeLookup{})
	require.Equal(t, 300*time.Millisecond, s.QuietPeriod())

	s = New(&fakeLookup{}, WithQuietPeriod(0))
	require.Equal(t, DefaultQuietPeriod, s.QuietPeriod())
}

// Typing "r", "rs", "rs1" quickly sends one lookup for "rs1".
func TestScheduler_CoalescesRapidInput(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{
		"rs1": {"rs1", "rs10", "rs100"},
	}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	timers := []tea.Cmd{s.OnInput("r"), s.OnInput("rs"), s.OnInput("rs1")}

	var dispatch []tea.Cmd
	for _, timer := range timers {
		if cmd := s.OnFire(fire(t, timer)); cmd != nil {
			dispatch = append(dispatch, cmd)
		}
	}

	require.Len(t, dispatch, 1)
	require.Equal(t, 1, s.Dispatched())

	msg := suggestions(t, dispatch[0])
	require.Equal(t, Token(1), msg.Token)
	require.True(t, s.Apply(msg))
	require.Equal(t, []rsid.Identifier{"rs1", "rs10", "rs100"}, s.Suggestions())
	require.Equal(t, []rsid.Identifier{"rs1"}, lookup.calls())
}

func TestScheduler_NormalizesQueryAtDispatch(t *testing.T) {
	lookup := &fakeLookup{}
	s := New(lookup, WithQuietPeriod(testQuiet))

	timer := s.OnInput("  12 ")
	suggestions(t, s.OnFire(fire(t, timer)))

	require.Equal(t, []rsid.Identifier{"rs12"}, lookup.calls())
}

// A slow response for an older query never overwrites a newer one.
func TestScheduler_DropsStaleResponses(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{
		"rs1":  {"rs1", "rs12", "rs13"},
		"rs12": {"rs12", "rs123"},
	}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	first := s.OnFire(fire(t, s.OnInput("rs1")))
	second := s.OnFire(fire(t, s.OnInput("rs12")))

	newer := suggestions(t, second)
	older := suggestions(t, first)
	require.Less(t, older.Token, newer.Token)

	require.True(t, s.Apply(newer))
	require.False(t, s.Apply(older))
	require.Equal(t, []rsid.Identifier{"rs12", "rs123"}, s.Suggestions())
}

func TestScheduler_StaleResponseBeforeNewerArrives(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{
		"rs1": {"rs1"},
	}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	first := s.OnFire(fire(t, s.OnInput("rs1")))
	_ = s.OnFire(fire(t, s.OnInput("rs12")))

	require.False(t, s.Apply(suggestions(t, first)))
	require.False(t, s.Visible())
}

func TestScheduler_EmptyInputClearsImmediately(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{"rs5": {"rs5"}}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	require.True(t, s.Apply(suggestions(t, s.OnFire(fire(t, s.OnInput("rs5"))))))
	require.True(t, s.Visible())

	pending := s.OnInput("rs55")
	require.Nil(t, s.OnInput("   "))
	require.False(t, s.Visible())
	require.Empty(t, s.Suggestions())
	require.False(t, s.Pending())

	require.Nil(t, s.OnFire(fire(t, pending)), "cleared input must cancel the pending timer")
	require.Equal(t, 1, s.Dispatched())
}

func TestScheduler_ExplicitSubmitCancelsPendingFire(t *testing.T) {
	lookup := &fakeLookup{}
	s := New(lookup, WithQuietPeriod(testQuiet))

	timer := s.OnInput("rs1")
	id := s.OnExplicitSubmit(" Rs1 ")
	require.Equal(t, rsid.Identifier("rs1"), id)
	require.False(t, s.Visible())

	require.Nil(t, s.OnFire(fire(t, timer)))
	require.Empty(t, lookup.calls())
	require.Equal(t, Token(0), s.Latest(), "canceled timers must not consume tokens")
}

// A response already in flight when the field is cleared must not reopen
// the list.
func TestScheduler_ClearedInputDiscardsInFlightResponse(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{"rs12": {"rs123", "rs124"}}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	inFlight := s.OnFire(fire(t, s.OnInput("12")))
	require.Nil(t, s.OnInput(""))
	require.False(t, s.Visible())

	late := suggestions(t, inFlight)
	require.Equal(t, s.Latest(), late.Token)
	require.False(t, s.Apply(late))
	require.False(t, s.Visible())
	require.Empty(t, s.Suggestions())
}

func TestScheduler_SubmitDiscardsInFlightResponse(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{"rs99": {"rs999"}}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	inFlight := s.OnFire(fire(t, s.OnInput("rs99")))
	s.OnExplicitSubmit("rs999")

	require.False(t, s.Apply(suggestions(t, inFlight)))
	require.False(t, s.Visible())

	// The next dispatch is applied normally.
	require.True(t, s.Apply(suggestions(t, s.OnFire(fire(t, s.OnInput("rs99"))))))
	require.Equal(t, []rsid.Identifier{"rs999"}, s.Suggestions())
	require.Equal(t, Token(2), s.Latest(), "dismissal must not consume a token")
}

func TestScheduler_TokensAssignedAtDispatchOnly(t *testing.T) {
	s := New(&fakeLookup{}, WithQuietPeriod(testQuiet))

	for _, v := range []string{"r", "rs", "rs9", "rs99"} {
		_ = s.OnInput(v)
	}
	s.Cancel()
	require.Equal(t, Token(0), s.Latest())

	msg := suggestions(t, s.OnFire(fire(t, s.OnInput("rs999"))))
	require.Equal(t, Token(1), msg.Token)
}

func TestScheduler_ErrorHidesList(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{"rs7": {"rs7", "rs77"}}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	require.True(t, s.Apply(suggestions(t, s.OnFire(fire(t, s.OnInput("rs7"))))))
	require.True(t, s.Visible())

	lookup.err = errors.New("connection refused")
	require.True(t, s.Apply(suggestions(t, s.OnFire(fire(t, s.OnInput("rs77"))))))
	require.False(t, s.Visible())
	require.Nil(t, s.Suggestions())
}

func TestScheduler_EmptyMatchesHideList(t *testing.T) {
	s := New(&fakeLookup{}, WithQuietPeriod(testQuiet))

	require.True(t, s.Apply(suggestions(t, s.OnFire(fire(t, s.OnInput("rs0"))))))
	require.False(t, s.Visible())
}

func TestScheduler_UpdateRoutesMessages(t *testing.T) {
	lookup := &fakeLookup{answers: map[rsid.Identifier][]rsid.Identifier{"rs3": {"rs3"}}}
	s := New(lookup, WithQuietPeriod(testQuiet))

	dispatch := s.Update(fire(t, s.OnInput("rs3")))
	require.NotNil(t, dispatch)
	require.Nil(t, s.Update(dispatch()))
	require.Equal(t, []rsid.Identifier{"rs3"}, s.Suggestions())

	require.Nil(t, s.Update(tea.KeyMsg{Type: tea.KeyEnter}))
}
