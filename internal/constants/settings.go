package constants

const (
	// Settings keys, shared by the key/value settings tables and the wire format
	SettingReminderInterval  = "reminderInterval"
	SettingQuietHoursStart   = "quietHoursStart"
	SettingQuietHoursEnd     = "quietHoursEnd"
	SettingLeetcodeEnabled   = "leetcodeEnabled"
	SettingCodeforcesEnabled = "codeforcesEnabled"

	// Default Settings Values
	DefaultReminderInterval  = 30
	DefaultQuietHoursStart   = 23
	DefaultQuietHoursEnd     = 7
	DefaultLeetcodeEnabled   = true
	DefaultCodeforcesEnabled = true

	// Bounds (inclusive)
	MinReminderInterval = 15
	MaxReminderInterval = 120
	MinHour             = 0
	MaxHour             = 23
)
