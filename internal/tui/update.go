package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailycode/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case statusMsg:
		return m.handleStatus(msg), nil

	case toggleMsg:
		return m.handleToggle(msg), nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.errMsg = "Failed to save settings: " + msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.notice = "Settings saved"
		return m, m.fetchStatus()
	}

	if m.state == StateEditSettings {
		return m.updateSettingsForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(models.Platforms)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchStatus()
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle(m.selected())
	case key.Matches(msg, m.keys.Settings):
		m.settingsForm = formFromSettings(m.settings)
		m.form = NewSettingsForm(m.settingsForm)
		m.state = StateEditSettings
		m.notice = ""
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) handleStatus(msg statusMsg) Model {
	if msg.err != nil {
		m.errMsg = "Failed to load status: " + msg.err.Error()
		return m
	}
	m.errMsg = ""
	m.loaded = true
	prior := m.tasks
	if msg.resp.Tasks != nil {
		m.tasks = *msg.resp.Tasks
	}
	if msg.resp.Stats != nil {
		m.stats = models.WithDefaultStats(msg.resp.Stats)
	}
	if msg.resp.Settings != nil {
		m.settings = models.WithDefaultSettings(msg.resp.Settings)
	}
	// Keep optimistic values for toggles still waiting on the core
	for p := range m.inFlight {
		m.tasks = m.tasks.WithDone(p, prior.Done(p))
	}
	return m
}

// toggle flips p immediately and asks the core to persist the change.
func (m Model) toggle(p models.Platform) (tea.Model, tea.Cmd) {
	if !m.loaded || m.inFlight[p] {
		return m, nil
	}
	done := !m.tasks.Done(p)
	m.tasks = m.tasks.WithDone(p, done)
	m.inFlight = copyInFlight(m.inFlight)
	m.inFlight[p] = true
	m.notice = ""
	return m, m.setTask(p, done)
}

func (m Model) handleToggle(msg toggleMsg) Model {
	m.inFlight = copyInFlight(m.inFlight)
	delete(m.inFlight, msg.platform)

	if msg.err != nil {
		m.tasks = m.tasks.WithDone(msg.platform, !msg.done)
		m.errMsg = "Failed to update " + msg.platform.DisplayName() + ": " + msg.err.Error()
		return m
	}
	m.errMsg = ""
	if msg.done {
		m.notice = msg.platform.DisplayName() + " done for today"
	}
	return m
}

func (m Model) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StatePopup
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		s, err := m.settingsForm.Settings()
		m.state = StatePopup
		m.form = nil
		if err != nil {
			m.errMsg = "Invalid settings: " + err.Error()
			return m, nil
		}
		return m, m.saveSettings(s)
	case huh.StateAborted:
		m.state = StatePopup
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func copyInFlight(src map[models.Platform]bool) map[models.Platform]bool {
	out := make(map[models.Platform]bool, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
