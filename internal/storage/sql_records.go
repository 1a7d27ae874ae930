package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
)

// sqlRecords reads and writes the records over database/sql. Queries are
// written with ? placeholders and passed through rebind for the dialect.
type sqlRecords struct {
	db     *sql.DB
	rebind func(string) string
}

func noRebind(q string) string { return q }

// dollarRebind rewrites ? placeholders as $1, $2, ...
func dollarRebind(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (r sqlRecords) getAll() (Snapshot, error) {
	if r.db == nil {
		return Snapshot{}, fmt.Errorf("storage not loaded")
	}

	var snap Snapshot
	var err error

	if snap.Settings, err = r.getSettings(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if snap.Tasks, err = r.getTasks(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read daily tasks: %w", err)
	}
	if snap.Stats, err = r.getStats(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read stats: %w", err)
	}

	return snap, nil
}

func (r sqlRecords) getSettings() (*models.Settings, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := models.DefaultSettings()
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case constants.SettingReminderInterval:
			if settings.ReminderInterval, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingQuietHoursStart:
			if settings.QuietHoursStart, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingQuietHoursEnd:
			if settings.QuietHoursEnd, err = strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", key, err)
			}
		case constants.SettingLeetcodeEnabled:
			settings.LeetcodeEnabled = value == "true"
		case constants.SettingCodeforcesEnabled:
			settings.CodeforcesEnabled = value == "true"
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r sqlRecords) getTasks() (*models.DailyTasks, error) {
	var tasks models.DailyTasks
	err := r.db.QueryRow("SELECT leetcode, codeforces, last_reset FROM daily_tasks WHERE id = 1").
		Scan(&tasks.Leetcode, &tasks.Codeforces, &tasks.LastReset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tasks, nil
}

func (r sqlRecords) getStats() (*models.Stats, error) {
	var stats models.Stats
	err := r.db.QueryRow(`
		SELECT leetcode_streak, codeforces_streak, leetcode_total_days, codeforces_total_days
		FROM stats WHERE id = 1
	`).Scan(&stats.LeetcodeStreak, &stats.CodeforcesStreak, &stats.LeetcodeTotalDays, &stats.CodeforcesTotalDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query("SELECT date, leetcode, codeforces FROM history ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.History = []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.Date, &e.Leetcode, &e.Codeforces); err != nil {
			return nil, err
		}
		stats.History = append(stats.History, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r sqlRecords) setPartial(p Patch) error {
	if r.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	if p.Empty() {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.Settings != nil {
		if err := r.saveSettings(tx, *p.Settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	if p.Tasks != nil {
		if err := r.saveTasks(tx, *p.Tasks); err != nil {
			return fmt.Errorf("failed to save daily tasks: %w", err)
		}
	}
	if p.Stats != nil {
		if err := r.saveStats(tx, *p.Stats); err != nil {
			return fmt.Errorf("failed to save stats: %w", err)
		}
	}

	return tx.Commit()
}

func (r sqlRecords) saveSettings(tx *sql.Tx, settings models.Settings) error {
	stmt, err := tx.Prepare(r.rebind(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	values := []struct{ key, value string }{
		{constants.SettingReminderInterval, strconv.Itoa(settings.ReminderInterval)},
		{constants.SettingQuietHoursStart, strconv.Itoa(settings.QuietHoursStart)},
		{constants.SettingQuietHoursEnd, strconv.Itoa(settings.QuietHoursEnd)},
		{constants.SettingLeetcodeEnabled, strconv.FormatBool(settings.LeetcodeEnabled)},
		{constants.SettingCodeforcesEnabled, strconv.FormatBool(settings.CodeforcesEnabled)},
	}
	for _, v := range values {
		if _, err := stmt.Exec(v.key, v.value); err != nil {
			return err
		}
	}
	return nil
}

func (r sqlRecords) saveTasks(tx *sql.Tx, tasks models.DailyTasks) error {
	_, err := tx.Exec(r.rebind(`
		INSERT INTO daily_tasks (id, leetcode, codeforces, last_reset) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			leetcode = excluded.leetcode,
			codeforces = excluded.codeforces,
			last_reset = excluded.last_reset
	`), tasks.Leetcode, tasks.Codeforces, tasks.LastReset)
	return err
}

func (r sqlRecords) saveStats(tx *sql.Tx, stats models.Stats) error {
	_, err := tx.Exec(r.rebind(`
		INSERT INTO stats (id, leetcode_streak, codeforces_streak, leetcode_total_days, codeforces_total_days)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			leetcode_streak = excluded.leetcode_streak,
			codeforces_streak = excluded.codeforces_streak,
			leetcode_total_days = excluded.leetcode_total_days,
			codeforces_total_days = excluded.codeforces_total_days
	`), stats.LeetcodeStreak, stats.CodeforcesStreak, stats.LeetcodeTotalDays, stats.CodeforcesTotalDays)
	if err != nil {
		return err
	}

	// History is rewritten whole
	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(r.rebind("INSERT INTO history (position, date, leetcode, codeforces) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range stats.History {
		if _, err := stmt.Exec(i, e.Date, e.Leetcode, e.Codeforces); err != nil {
			return err
		}
	}
	return nil
}
