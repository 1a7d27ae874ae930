package tracker

import (
	"time"

	"github.com/julianstephens/dailycode/internal/models"
)

// IsQuiet reports whether hour falls inside the do-not-disturb window
// [start, end). A window with start > end wraps past midnight.
func IsQuiet(hour, start, end int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}

// ShouldOpen decides whether a reminder tab should be opened for p at now.
func ShouldOpen(p models.Platform, tasks models.DailyTasks, settings models.Settings, now time.Time) bool {
	if IsQuiet(now.Hour(), settings.QuietHoursStart, settings.QuietHoursEnd) {
		return false
	}
	if !settings.Enabled(p) {
		return false
	}
	return !tasks.Done(p)
}
