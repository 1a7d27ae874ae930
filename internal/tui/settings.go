package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
)

// SettingsFormModel holds the form's editable values. Numbers are kept as
// text for huh inputs.
type SettingsFormModel struct {
	ReminderInterval  string
	QuietHoursStart   string
	QuietHoursEnd     string
	LeetcodeEnabled   bool
	CodeforcesEnabled bool
}

func formFromSettings(s models.Settings) *SettingsFormModel {
	return &SettingsFormModel{
		ReminderInterval:  strconv.Itoa(s.ReminderInterval),
		QuietHoursStart:   strconv.Itoa(s.QuietHoursStart),
		QuietHoursEnd:     strconv.Itoa(s.QuietHoursEnd),
		LeetcodeEnabled:   s.LeetcodeEnabled,
		CodeforcesEnabled: s.CodeforcesEnabled,
	}
}

// Settings converts the form values back into a settings record.
func (fm *SettingsFormModel) Settings() (models.Settings, error) {
	interval, err := parseBounded(fm.ReminderInterval, constants.MinReminderInterval, constants.MaxReminderInterval)
	if err != nil {
		return models.Settings{}, fmt.Errorf("reminder interval: %w", err)
	}
	start, err := parseBounded(fm.QuietHoursStart, constants.MinHour, constants.MaxHour)
	if err != nil {
		return models.Settings{}, fmt.Errorf("quiet hours start: %w", err)
	}
	end, err := parseBounded(fm.QuietHoursEnd, constants.MinHour, constants.MaxHour)
	if err != nil {
		return models.Settings{}, fmt.Errorf("quiet hours end: %w", err)
	}
	return models.Settings{
		ReminderInterval:  interval,
		QuietHoursStart:   start,
		QuietHoursEnd:     end,
		LeetcodeEnabled:   fm.LeetcodeEnabled,
		CodeforcesEnabled: fm.CodeforcesEnabled,
	}, nil
}

func parseBounded(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("must be a whole number")
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	return n, nil
}

func boundedValidator(lo, hi int) func(string) error {
	return func(s string) error {
		_, err := parseBounded(s, lo, hi)
		return err
	}
}

func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("LeetCode reminders").
				Value(&fm.LeetcodeEnabled),
			huh.NewConfirm().
				Title("Codeforces reminders").
				Value(&fm.CodeforcesEnabled),
			huh.NewInput().
				Title("Reminder interval (minutes)").
				Description(fmt.Sprintf("%d to %d", constants.MinReminderInterval, constants.MaxReminderInterval)).
				Value(&fm.ReminderInterval).
				Validate(boundedValidator(constants.MinReminderInterval, constants.MaxReminderInterval)),
			huh.NewInput().
				Title("Quiet hours start (hour)").
				Description("No reminders from this hour on. 0 to 23").
				Value(&fm.QuietHoursStart).
				Validate(boundedValidator(constants.MinHour, constants.MaxHour)),
			huh.NewInput().
				Title("Quiet hours end (hour)").
				Description("Reminders resume at this hour. 0 to 23").
				Value(&fm.QuietHoursEnd).
				Validate(boundedValidator(constants.MinHour, constants.MaxHour)),
		),
	).WithShowHelp(true)
}
