// ABOUTME: Bubbletea model for the playback TUI
// ABOUTME: Defines playback state and update logic
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the TUI state
type Model struct {
	// File
	file       string
	encoding   string
	sampleRate int
	channels   int

	// Loop
	hasLoop   bool
	loopStart int
	loopEnd   int
	loopLimit int

	// Playback
	state    string
	position int
	total    int
	loops    int
	volume   int
	muted    bool

	volumeCtrl *VolumeControl

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case DoneMsg:
		m.state = "finished"
		if msg.Err != nil {
			m.state = "error: " + msg.Err.Error()
		}
		return m, tea.Quit
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("DSP Player"))
	b.WriteString("\n\n")

	m.renderFileInfo(&b)
	b.WriteString("\n")
	m.renderProgress(&b)
	m.renderControls(&b)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓:Volume  m:Mute  q:Quit"))

	return b.String()
}

func field(b *strings.Builder, name, value string) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s", name+":")))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

// renderFileInfo renders the file name and stream format
func (m Model) renderFileInfo(b *strings.Builder) {
	field(b, "State", truncate(m.state, 45))
	if m.file == "" {
		field(b, "File", "none")
		return
	}

	field(b, "File", truncate(filepath.Base(m.file), 45))
	field(b, "Format", fmt.Sprintf("%s %dHz %s", m.encoding, m.sampleRate, channelName(m.channels)))

	loop := "none"
	if m.hasLoop {
		loop = fmt.Sprintf("%d-%d", m.loopStart, m.loopEnd)
	}
	field(b, "Loop", loop)
}

// renderProgress renders the position bar and loop counter
func (m Model) renderProgress(b *strings.Builder) {
	bar := renderBar(m.position, m.total, 30)
	field(b, "Time", fmt.Sprintf("[%s] %s", bar, formatTime(m.position, m.sampleRate)))

	passes := fmt.Sprintf("%d", m.loops)
	switch {
	case m.loopLimit < 0:
		passes += "/∞"
	case m.hasLoop:
		passes += fmt.Sprintf("/%d", m.loopLimit)
	}
	field(b, "Loops", passes)
}

// renderControls renders volume status
func (m Model) renderControls(b *strings.Builder) {
	volume := fmt.Sprintf("[%s] %d%%", renderBar(m.volume, 100, 10), m.volume)
	if m.muted {
		volume += " (muted)"
	}
	field(b, "Volume", volume)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		m.volume = min(m.volume+5, 100)
		m.sendVolume()
	case "down":
		m.volume = max(m.volume-5, 0)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	}

	return m, nil
}

// sendVolume forwards the current volume without blocking the UI
func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.File != "" {
		m.file = msg.File
		m.encoding = msg.Encoding
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.Loop != nil {
		m.hasLoop = true
		m.loopStart = msg.Loop[0]
		m.loopEnd = msg.Loop[1]
	}
	if msg.LoopLimit != nil {
		m.loopLimit = *msg.LoopLimit
	}
	if msg.Total != 0 {
		m.total = msg.Total
		m.position = msg.Position
		m.loops = msg.Loops
	}
	if msg.State != "" {
		m.state = msg.State
	}
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	File       string
	Encoding   string
	SampleRate int
	Channels   int
	// Loop holds the inclusive loop start and end
	Loop      *[2]int
	LoopLimit *int
	Position  int
	Total     int
	Loops     int
	State     string
}

// DoneMsg reports that playback ended
type DoneMsg struct {
	Err error
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = min((value*width)/max, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatTime(samples, rate int) string {
	if rate <= 0 {
		return "0:00.0"
	}
	tenths := samples * 10 / rate
	return fmt.Sprintf("%d:%02d.%d", tenths/600, tenths/10%60, tenths%10)
}
