package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ASCII art logo shown while the results panel is empty
var snpscopeLogo = []string{
	"  ▄▄▄▄  ▄▄  ▄  ▄▄▄▄   ▄▄▄▄  ▄▄▄▄  ▄▄▄▄  ▄▄▄▄  ▄▄▄▄",
	" █▄▄▄   █ █ █  █▄▄█  █▄▄▄  █     █  █  █▄▄█  █▄▄",
	"  ▄▄▄█  █  ██  █      ▄▄▄█  █▄▄▄  █▄▄█  █     █▄▄▄",
}

// Gradient colors from light (top) to dark (bottom) - subtle variation
var logoGradientColors = []string{
	"#5DADE2",
	"#3498DB",
	"#2874A6",
}

// Spinner frames for retro loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the delay between spinner frames.
const spinnerInterval = 80 * time.Millisecond

// SpinnerTickMsg triggers spinner animation frame advance
type SpinnerTickMsg time.Time

// ProgressModel animates the "searching" status while explicit searches run.
type ProgressModel struct {
	stage        string
	active       bool
	spinnerFrame int
}

func NewProgressModel() ProgressModel {
	return ProgressModel{spinnerFrame: 0}
}

// SpinnerTick returns a command that sends SpinnerTickMsg after a delay
func SpinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Start shows stage with a spinner. A tick chain is only started when the
// spinner was idle, so overlapping searches do not speed it up.
func (m *ProgressModel) Start(stage string) tea.Cmd {
	m.stage = stage
	if m.active {
		return nil
	}
	m.active = true
	return SpinnerTick()
}

// Stop ends the animation; the pending tick is dropped when it arrives.
func (m *ProgressModel) Stop() {
	m.active = false
	m.stage = ""
}

// Active reports whether a search is in flight.
func (m ProgressModel) Active() bool { return m.active }

func (m ProgressModel) Update(msg tea.Msg) (ProgressModel, tea.Cmd) {
	if _, ok := msg.(SpinnerTickMsg); ok && m.active {
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, SpinnerTick()
	}
	return m, nil
}

// View renders the spinner line, or nothing when idle.
func (m ProgressModel) View() string {
	if !m.active {
		return ""
	}
	spinner := spinnerFrames[m.spinnerFrame]
	spinnerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")) // Gold

	stage := m.stage
	if stage == "" {
		stage = "Searching"
	}
	return fmt.Sprintf("%s %s...", spinnerStyle.Render(spinner), stage)
}

// Logo renders the gradient logo with a hint line beneath it.
func Logo(hint string) string {
	var logoLines []string
	for i, line := range snpscopeLogo {
		color := logoGradientColors[i%len(logoGradientColors)]
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Bold(true)
		logoLines = append(logoLines, style.Render(line))
	}
	logo := strings.Join(logoLines, "\n")
	if hint == "" {
		return logo
	}
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9AA0A6")).Faint(true)
	return lipgloss.JoinVertical(lipgloss.Center, logo, "", hintStyle.Render(hint))
}
