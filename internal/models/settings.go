package models

import (
	"encoding/json"

	"github.com/julianstephens/dailycode/internal/constants"
)

// Settings represents the reminder configuration
type Settings struct {
	ReminderInterval  int  `json:"reminderInterval"`  // minutes between reminder checks, [15,120]
	QuietHoursStart   int  `json:"quietHoursStart"`   // first quiet hour of day, [0,23]
	QuietHoursEnd     int  `json:"quietHoursEnd"`     // first non-quiet hour after the window, [0,23]
	LeetcodeEnabled   bool `json:"leetcodeEnabled"`   // whether LeetCode reminders open tabs
	CodeforcesEnabled bool `json:"codeforcesEnabled"` // whether Codeforces reminders open tabs
}

// DefaultSettings returns settings with default values.
func DefaultSettings() Settings {
	return Settings{
		ReminderInterval:  constants.DefaultReminderInterval,
		QuietHoursStart:   constants.DefaultQuietHoursStart,
		QuietHoursEnd:     constants.DefaultQuietHoursEnd,
		LeetcodeEnabled:   constants.DefaultLeetcodeEnabled,
		CodeforcesEnabled: constants.DefaultCodeforcesEnabled,
	}
}

// UnmarshalJSON decodes a stored record over the defaults, so a missing
// field keeps its default instead of the zero value.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	v := plain(DefaultSettings())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Settings(v)
	return nil
}

// Enabled reports whether reminders are on for the given platform.
// Unknown platforms are never enabled.
func (s Settings) Enabled(p Platform) bool {
	switch p {
	case PlatformLeetcode:
		return s.LeetcodeEnabled
	case PlatformCodeforces:
		return s.CodeforcesEnabled
	default:
		return false
	}
}

// WithDefaultSettings returns a complete, in-bounds settings record.
// A nil record yields the defaults; out-of-range numbers are replaced
// field by field.
func WithDefaultSettings(s *Settings) Settings {
	if s == nil {
		return DefaultSettings()
	}
	out := *s
	if out.ReminderInterval < constants.MinReminderInterval || out.ReminderInterval > constants.MaxReminderInterval {
		out.ReminderInterval = constants.DefaultReminderInterval
	}
	if out.QuietHoursStart < constants.MinHour || out.QuietHoursStart > constants.MaxHour {
		out.QuietHoursStart = constants.DefaultQuietHoursStart
	}
	if out.QuietHoursEnd < constants.MinHour || out.QuietHoursEnd > constants.MaxHour {
		out.QuietHoursEnd = constants.DefaultQuietHoursEnd
	}
	return out
}
