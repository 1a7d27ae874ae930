// Package tui is the terminal popup: today's two tasks, their streaks and a
// settings form.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/protocol"
)

// Sender delivers a protocol message to the reminder core.
type Sender interface {
	Send(ctx context.Context, msg protocol.Message) (protocol.Response, error)
}

type SessionState int

const (
	StatePopup SessionState = iota
	StateEditSettings
)

type statusMsg struct {
	resp protocol.Response
	err  error
}

type toggleMsg struct {
	platform models.Platform
	done     bool
	err      error
}

type settingsSavedMsg struct {
	settings models.Settings
	err      error
}

type Model struct {
	sender       Sender
	timeout      time.Duration
	state        SessionState
	keys         KeyMap
	help         help.Model
	loaded       bool
	tasks        models.DailyTasks
	stats        models.Stats
	settings     models.Settings
	cursor       int
	inFlight     map[models.Platform]bool
	form         *huh.Form
	settingsForm *SettingsFormModel
	errMsg       string
	notice       string
	quitting     bool
	width        int
	height       int
}

func NewModel(sender Sender) Model {
	return Model{
		sender:   sender,
		timeout:  constants.ClientTimeout,
		state:    StatePopup,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		settings: models.DefaultSettings(),
		stats:    models.WithDefaultStats(nil),
		inFlight: map[models.Platform]bool{},
	}
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return m.fetchStatus()
}

// Run starts the popup and blocks until it exits.
func Run(sender Sender) error {
	p := tea.NewProgram(NewModel(sender), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// send delivers msg and turns an error response into a Go error.
func (m Model) send(msg protocol.Message) (protocol.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	resp, err := m.sender.Send(ctx, msg)
	if err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.send(protocol.GetStatus())
		return statusMsg{resp: resp, err: err}
	}
}

func (m Model) setTask(p models.Platform, done bool) tea.Cmd {
	return func() tea.Msg {
		_, err := m.send(protocol.SetTask(p, done))
		return toggleMsg{platform: p, done: done, err: err}
	}
}

func (m Model) saveSettings(s models.Settings) tea.Cmd {
	return func() tea.Msg {
		_, err := m.send(protocol.UpdateSettings(s))
		return settingsSavedMsg{settings: s, err: err}
	}
}

func (m Model) selected() models.Platform {
	return models.Platforms[m.cursor]
}
