// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume or mute change from the UI to playback
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg asks playback to stop
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(volCtrl *VolumeControl) Model {
	return Model{
		volume:     100,
		state:      "idle",
		volumeCtrl: volCtrl,
	}
}

// NewProgram creates the TUI program. The caller starts it with Run and
// feeds it StatusMsg and DoneMsg through Send.
func NewProgram(volCtrl *VolumeControl) *tea.Program {
	return tea.NewProgram(NewModel(volCtrl), tea.WithAltScreen())
}
