package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dailycode/internal/backup"
	"github.com/julianstephens/dailycode/internal/client"
	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/storage"
	"github.com/julianstephens/dailycode/internal/tracker"
)

var errDoctorFailed = errors.New("one or more checks failed")

type DoctorCmd struct{}

type checkLevel int

const (
	levelFail checkLevel = iota
	levelWarn
)

type doctorCheck struct {
	name      string
	level     checkLevel
	needStore bool
	run       func(*Context) error
}

var doctorChecks = []doctorCheck{
	{"Storage reachable", levelFail, false, checkStoreReachable},
	{"Schema version", levelFail, true, checkSchemaVersion},
	{"Records readable", levelFail, true, checkRecords},
	{"Daemon reachable", levelWarn, false, checkDaemon},
	{"Backups present", levelWarn, false, checkBackupsPresent},
	{"Clock/timezone", levelFail, false, checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Out, "Running diagnostics...")
	fmt.Fprintln(ctx.Out)

	hasError := false
	storeReachable := false

	for _, check := range doctorChecks {
		if check.needStore && !storeReachable {
			fmt.Fprintf(ctx.Out, "⊘ %s: SKIPPED (storage not reachable)\n", check.name)
			continue
		}

		err := check.run(ctx)
		switch {
		case err == nil:
			fmt.Fprintf(ctx.Out, "✓ %s: OK\n", check.name)
			if check.name == "Storage reachable" {
				storeReachable = true
			}
		case check.level == levelWarn:
			fmt.Fprintf(ctx.Out, "⚠ %s: WARNING\n", check.name)
			fmt.Fprintf(ctx.Out, "   %v\n", err)
		default:
			fmt.Fprintf(ctx.Out, "❌ %s: FAIL\n", check.name)
			fmt.Fprintf(ctx.Out, "   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Fprintln(ctx.Out)
	if hasError {
		return errDoctorFailed
	}
	fmt.Fprintln(ctx.Out, "All checks passed.")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	return ctx.Store.Load()
}

func checkSchemaVersion(ctx *Context) error {
	runner := storage.SchemaRunner(ctx.Store)
	if runner == nil {
		return nil
	}
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'dailycode migrate'", pending)
	}
	return nil
}

func checkRecords(ctx *Context) error {
	snap, err := ctx.Store.GetAll()
	if err != nil {
		return err
	}
	_, tasks, stats := snap.Complete(tracker.Today(ctx.Now()))
	if tasks.LastReset != "" {
		if _, err := time.Parse(constants.DateFormat, tasks.LastReset); err != nil {
			return fmt.Errorf("invalid last reset date %q", tasks.LastReset)
		}
	}
	if len(stats.History) > constants.HistoryLimit {
		return fmt.Errorf("history holds %d entries, limit is %d", len(stats.History), constants.HistoryLimit)
	}
	for _, h := range stats.History {
		if _, err := time.Parse(constants.DateFormat, h.Date); err != nil {
			return fmt.Errorf("invalid history date %q", h.Date)
		}
	}
	return nil
}

func checkDaemon(ctx *Context) error {
	if ctx.Client == nil {
		return client.ErrDaemonNotRunning
	}
	if _, err := ctx.Client.Locate(); err != nil {
		return fmt.Errorf("%w: reminders only fire while 'dailycode daemon' runs", err)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	if _, ok := ctx.Store.(*storage.SQLiteStore); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return errors.New("no backups found, run 'dailycode backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	// Day boundaries follow the local zone
	name, offset := now.Zone()
	if name == "" && offset == 0 && now.Location() != time.UTC {
		return errors.New("local timezone could not be determined")
	}
	return nil
}
