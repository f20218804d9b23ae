// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling, and rendering helpers
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // VolumeControl is optional for testing

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}
	if model.muted {
		t.Error("expected muted to be false initially")
	}
	if model.state != "idle" {
		t.Errorf("expected state 'idle', got '%s'", model.state)
	}
}

func TestStatusMsgFileInfo(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		File:       "/music/stage1.dsp",
		Encoding:   "DSP-ADPCM",
		SampleRate: 32000,
		Channels:   2,
		Loop:       &[2]int{100, 9999},
	})

	if model.file != "/music/stage1.dsp" || model.encoding != "DSP-ADPCM" {
		t.Errorf("unexpected file info %q %q", model.file, model.encoding)
	}
	if model.sampleRate != 32000 || model.channels != 2 {
		t.Errorf("unexpected format %d Hz %d ch", model.sampleRate, model.channels)
	}
	if !model.hasLoop || model.loopStart != 100 || model.loopEnd != 9999 {
		t.Errorf("unexpected loop %v %d-%d", model.hasLoop, model.loopStart, model.loopEnd)
	}
}

func TestStatusMsgProgress(t *testing.T) {
	model := NewModel(nil)

	limit := -1
	model.applyStatus(StatusMsg{Position: 500, Total: 1000, Loops: 3, LoopLimit: &limit, State: "playing"})

	if model.position != 500 || model.total != 1000 || model.loops != 3 {
		t.Errorf("unexpected progress %d/%d loops %d", model.position, model.total, model.loops)
	}
	if model.loopLimit != -1 {
		t.Errorf("expected loop limit -1, got %d", model.loopLimit)
	}
	if model.state != "playing" {
		t.Errorf("expected state 'playing', got '%s'", model.state)
	}
}

func TestStatusMsgZeroValues(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{File: "a.wav", Position: 5, Total: 10, State: "playing"})

	// Empty message leaves everything in place
	model.applyStatus(StatusMsg{})

	if model.file != "a.wav" || model.total != 10 || model.state != "playing" {
		t.Error("empty status should not clear state")
	}
	if model.hasLoop {
		t.Error("loop should stay unset")
	}
}

func TestKeyHandling(t *testing.T) {
	ctrl := NewVolumeControl()
	var m tea.Model = NewModel(ctrl)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(Model).volume; got != 95 {
		t.Errorf("expected volume 95, got %d", got)
	}
	if change := <-ctrl.Changes; change.Volume != 95 || change.Muted {
		t.Errorf("unexpected volume change %+v", change)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if !m.(Model).muted {
		t.Error("expected muted after 'm'")
	}
	if change := <-ctrl.Changes; !change.Muted {
		t.Errorf("expected mute change, got %+v", change)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(Model).volume; got != 100 {
		t.Errorf("expected volume capped at 100, got %d", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit to be forwarded to playback")
	}
}

func TestKeyHandlingWithoutControl(t *testing.T) {
	var m tea.Model = NewModel(nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if !m.(Model).muted {
		t.Error("expected muted after 'm'")
	}
}

func TestDoneMsg(t *testing.T) {
	var m tea.Model = NewModel(nil)

	m, cmd := m.Update(DoneMsg{})
	if m.(Model).state != "finished" {
		t.Errorf("expected state 'finished', got '%s'", m.(Model).state)
	}
	if cmd == nil {
		t.Error("expected quit command after playback ends")
	}

	m, _ = m.Update(DoneMsg{Err: errors.New("device lost")})
	if !strings.Contains(m.(Model).state, "device lost") {
		t.Errorf("expected error in state, got '%s'", m.(Model).state)
	}
}

func TestView(t *testing.T) {
	var m tea.Model = NewModel(nil)
	if m.View() != "Loading..." {
		t.Errorf("expected loading view before window size, got %q", m.View())
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(StatusMsg{File: "/tmp/loop.dsp", Encoding: "DSP-ADPCM", SampleRate: 32000, Channels: 1, Loop: &[2]int{0, 31999}})
	view := m.View()
	for _, want := range []string{"loop.dsp", "32000Hz Mono", "0-31999", "q:Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max int
		expected   string
	}{
		{0, 10, "░░░░"},
		{5, 10, "██░░"},
		{10, 10, "████"},
		{20, 10, "████"},
		{3, 0, "░░░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, 4); got != tt.expected {
			t.Errorf("renderBar(%d, %d) = %q, expected %q", tt.value, tt.max, got, tt.expected)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		samples, rate int
		expected      string
	}{
		{0, 32000, "0:00.0"},
		{16000, 32000, "0:00.5"},
		{32000 * 75, 32000, "1:15.0"},
		{100, 0, "0:00.0"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.samples, tt.rate); got != tt.expected {
			t.Errorf("formatTime(%d, %d) = %q, expected %q", tt.samples, tt.rate, got, tt.expected)
		}
	}
}

func TestChannelNameFunction(t *testing.T) {
	if channelName(1) != "Mono" || channelName(2) != "Stereo" {
		t.Error("unexpected channel names")
	}
}
