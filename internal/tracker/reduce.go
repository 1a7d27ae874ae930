package tracker

import (
	"time"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/models"
)

// State is the complete persisted state the reducer works on.
type State struct {
	Settings models.Settings
	Tasks    models.DailyTasks
	Stats    models.Stats
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Check runs a rollover followed by a tab-open pass.
type Check struct {
	Now time.Time
}

// ResetIfNewDay runs a rollover only.
type ResetIfNewDay struct {
	Now time.Time
}

// SetTask marks a platform's task done or not done for today.
type SetTask struct {
	Platform models.Platform
	Done     bool
}

// UpdateSettings replaces the settings record. Settings must already be validated.
type UpdateSettings struct {
	Settings models.Settings
}

func (Check) isEvent()          {}
func (ResetIfNewDay) isEvent()  {}
func (SetTask) isEvent()        {}
func (UpdateSettings) isEvent() {}

// Effect is an action the host must carry out after Reduce.
type Effect interface {
	isEffect()
}

// Persist writes the non-nil records.
type Persist struct {
	Settings *models.Settings
	Tasks    *models.DailyTasks
	Stats    *models.Stats
}

// OpenTab asks the host to open the allowlisted page for Platform.
type OpenTab struct {
	Platform models.Platform
}

// RearmAlarm asks the host to clear and recreate the reminder alarm.
type RearmAlarm struct {
	Interval time.Duration
}

func (Persist) isEffect()    {}
func (OpenTab) isEffect()    {}
func (RearmAlarm) isEffect() {}

// Today formats t as a calendar date in t's location.
func Today(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Reduce applies ev to state and returns the new state along with the
// effects the host should perform, in order.
func Reduce(state State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case ResetIfNewDay:
		return reset(state, ev.Now)

	case Check:
		next, effects := reset(state, ev.Now)
		for _, p := range models.Platforms {
			if ShouldOpen(p, next.Tasks, next.Settings, ev.Now) {
				effects = append(effects, OpenTab{Platform: p})
			}
		}
		return next, effects

	case SetTask:
		next := state
		next.Tasks = state.Tasks.WithDone(ev.Platform, ev.Done)
		return next, []Effect{Persist{Tasks: &next.Tasks}}

	case UpdateSettings:
		next := state
		next.Settings = ev.Settings
		return next, []Effect{
			Persist{Settings: &next.Settings},
			RearmAlarm{Interval: time.Duration(next.Settings.ReminderInterval) * time.Minute},
		}
	}

	return state, nil
}

func reset(state State, now time.Time) (State, []Effect) {
	hadHistory := state.Tasks.LastReset != ""
	tasks, stats, changed := Rollover(Today(now), state.Tasks, state.Stats)
	if !changed {
		return state, nil
	}

	next := state
	next.Tasks = tasks
	persist := Persist{Tasks: &next.Tasks}
	if hadHistory {
		next.Stats = stats
		persist.Stats = &next.Stats
	}
	return next, []Effect{persist}
}
