package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateEditSettings:
		content = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Settings"),
			m.form.View(),
			labelStyle.Render("esc to cancel"),
		)
	default:
		content = m.viewPopup()
	}

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		content,
		m.viewStatusLine(),
		m.help.View(m),
	))
}

func (m Model) viewPopup() string {
	if !m.loaded && m.errMsg == "" {
		return titleStyle.Render("Daily Code") + "\nLoading..."
	}

	cards := []string{titleStyle.Render("Daily Code")}
	for i, p := range models.Platforms {
		cards = append(cards, m.viewCard(p, i == m.cursor))
	}
	cards = append(cards, labelStyle.Render(scheduleLine(m.settings)))
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) viewCard(p models.Platform, selected bool) string {
	done := m.tasks.Done(p)

	check := "[ ]"
	status := pendingStyle.Render(statusLabel(false))
	if done {
		check = "[x]"
		status = doneStyle.Render(statusLabel(true))
	}

	header := fmt.Sprintf("%s %s", check, p.DisplayName())
	if !m.settings.Enabled(p) {
		header += labelStyle.Render("  (reminders off)")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		status,
		labelStyle.Render("Streak: ")+streakLabel(m.stats.Streak(p))+
			labelStyle.Render(fmt.Sprintf("   Total: %d days", m.stats.TotalDays(p))),
	)

	style := cardStyle
	switch {
	case selected:
		style = selectedCardStyle
	case done:
		style = completedCardStyle
	}
	return style.Render(body)
}

func (m Model) viewStatusLine() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return ""
	}
}

func statusLabel(done bool) string {
	if done {
		return "Completed! ✓"
	}
	return "Not completed"
}

// streakLabel adds a fire once a streak reaches a week.
func streakLabel(n int) string {
	if n >= constants.StreakFireThreshold {
		return fmt.Sprintf("%d 🔥", n)
	}
	return fmt.Sprintf("%d", max(n, 0))
}

func scheduleLine(s models.Settings) string {
	return fmt.Sprintf("Reminders every %d min, quiet %02d:00-%02d:00", s.ReminderInterval, s.QuietHoursStart, s.QuietHoursEnd)
}
