// Package tracker holds the daily task state machine: day rollover, streak
// bookkeeping and the quiet-hours gate. Nothing in here performs I/O.
package tracker

import (
	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
)

// Rollover closes out the day recorded in tasks when currentDate differs
// from it. The outgoing day is folded into stats (unless tasks never went
// through a rollover) and a fresh tasks record is started for currentDate.
// It reports whether anything changed; calling it again on the same date is
// a no-op.
func Rollover(currentDate string, tasks models.DailyTasks, stats models.Stats) (models.DailyTasks, models.Stats, bool) {
	if tasks.LastReset == currentDate {
		return tasks, stats, false
	}

	if tasks.LastReset != "" {
		stats = fold(tasks, stats)
	}

	return models.DailyTasks{LastReset: currentDate}, stats, true
}

func fold(tasks models.DailyTasks, stats models.Stats) models.Stats {
	out := stats

	if tasks.Leetcode {
		out.LeetcodeStreak++
		out.LeetcodeTotalDays++
	} else {
		out.LeetcodeStreak = 0
	}

	if tasks.Codeforces {
		out.CodeforcesStreak++
		out.CodeforcesTotalDays++
	} else {
		out.CodeforcesStreak = 0
	}

	history := make([]models.HistoryEntry, 0, len(stats.History)+1)
	history = append(history, stats.History...)
	history = append(history, models.HistoryEntry{
		Date:       tasks.LastReset,
		Leetcode:   tasks.Leetcode,
		Codeforces: tasks.Codeforces,
	})
	if len(history) > constants.HistoryLimit {
		history = history[len(history)-constants.HistoryLimit:]
	}
	out.History = history

	return out
}
