// Package dispatch routes protocol messages to the tracker core and carries
// out the effects it asks for.
package dispatch

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/opener"
	"github.com/julianstephens/dailycode/internal/protocol"
	"github.com/julianstephens/dailycode/internal/storage"
	"github.com/julianstephens/dailycode/internal/tracker"
	"github.com/julianstephens/dailycode/internal/validation"
)

// RearmFunc clears and recreates the reminder alarm with a new period.
type RearmFunc func(interval time.Duration) error

type Dispatcher struct {
	id     string
	store  storage.Provider
	opener opener.Opener
	rearm  RearmFunc
	now    func() time.Time
}

type Option func(*Dispatcher)

// WithRearm sets the function used to re-arm the reminder alarm. Without
// one, re-arm requests are logged and skipped.
func WithRearm(fn RearmFunc) Option {
	return func(d *Dispatcher) { d.rearm = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New returns a dispatcher whose own identity is id. Only messages sent
// with that identity are served.
func New(id string, store storage.Provider, o opener.Opener, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		id:     id,
		store:  store,
		opener: o,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ID returns the sender identity this dispatcher accepts.
func (d *Dispatcher) ID() string {
	return d.id
}

// Self returns a sender carrying the dispatcher's own identity.
func (d *Dispatcher) Self() protocol.Sender {
	return protocol.Sender{ID: d.id}
}

func (d *Dispatcher) authorized(sender protocol.Sender) bool {
	if d.id == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sender.ID), []byte(d.id)) == 1
}

// Handle serves one message. Validation and authorization failures come
// back as error responses; storage failures come back as a non-nil error.
func (d *Dispatcher) Handle(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error) {
	if !d.authorized(sender) {
		logger.Warn("Rejected message from unknown sender")
		return protocol.Fail(protocol.ErrUnauthorized), nil
	}

	if !validation.IsValidMessageType(msg.Type) {
		return protocol.Fail(protocol.ErrInvalidMessageType), nil
	}

	if err := ctx.Err(); err != nil {
		return protocol.Response{}, err
	}

	switch protocol.MessageType(msg.Type.(string)) {
	case protocol.TypeGetStatus:
		state, err := d.load()
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{
			Tasks:    &state.Tasks,
			Stats:    &state.Stats,
			Settings: &state.Settings,
		}, nil

	case protocol.TypeMarkComplete, protocol.TypeMarkIncomplete:
		if !validation.IsValidPlatform(msg.Platform) {
			return protocol.Fail(protocol.ErrInvalidPlatform), nil
		}
		p, _ := models.ParsePlatform(msg.Platform.(string))
		done := protocol.MessageType(msg.Type.(string)) == protocol.TypeMarkComplete
		if err := d.apply(tracker.SetTask{Platform: p, Done: done}); err != nil {
			return protocol.Response{}, err
		}
		return protocol.OK(), nil

	case protocol.TypeUpdateSettings:
		settings, err := validation.ValidateSettings(msg.Settings)
		if err != nil {
			return protocol.Fail(protocol.ErrInvalidSettings), nil
		}
		if err := d.apply(tracker.UpdateSettings{Settings: settings}); err != nil {
			return protocol.Response{}, err
		}
		return protocol.OK(), nil

	case protocol.TypeTriggerCheck:
		if err := d.Check(); err != nil {
			return protocol.Response{}, err
		}
		return protocol.OK(), nil
	}

	return protocol.Fail(protocol.ErrInvalidMessageType), nil
}

// Startup creates any absent records and folds a missed day.
func (d *Dispatcher) Startup() (models.Settings, error) {
	if _, err := storage.EnsureDefaults(d.store, tracker.Today(d.now())); err != nil {
		return models.Settings{}, err
	}
	if err := d.ResetIfNewDay(); err != nil {
		return models.Settings{}, err
	}
	state, err := d.load()
	if err != nil {
		return models.Settings{}, err
	}
	return state.Settings, nil
}

// Check runs a rollover followed by a tab-open pass.
func (d *Dispatcher) Check() error {
	now := d.now()
	state, err := d.load()
	if err != nil {
		return err
	}

	next, effects := tracker.Reduce(state, tracker.Check{Now: now})
	if tracker.IsQuiet(now.Hour(), next.Settings.QuietHoursStart, next.Settings.QuietHoursEnd) {
		logger.Info("Quiet hours, no pages opened", "hour", now.Hour())
	}
	return d.perform(effects)
}

// ResetIfNewDay runs a rollover only.
func (d *Dispatcher) ResetIfNewDay() error {
	return d.apply(tracker.ResetIfNewDay{Now: d.now()})
}

func (d *Dispatcher) load() (tracker.State, error) {
	snap, err := d.store.GetAll()
	if err != nil {
		return tracker.State{}, fmt.Errorf("failed to load state: %w", err)
	}
	settings, tasks, stats := snap.Complete(tracker.Today(d.now()))
	return tracker.State{Settings: settings, Tasks: tasks, Stats: stats}, nil
}

func (d *Dispatcher) apply(ev tracker.Event) error {
	state, err := d.load()
	if err != nil {
		return err
	}

	_, effects := tracker.Reduce(state, ev)
	return d.perform(effects)
}

// perform runs effects in order. A failed write stops the sequence so no
// tab opens for state that was not saved; tab and alarm failures are logged.
func (d *Dispatcher) perform(effects []tracker.Effect) error {
	for _, eff := range effects {
		switch e := eff.(type) {
		case tracker.Persist:
			if err := d.store.SetPartial(storage.Patch(e)); err != nil {
				return fmt.Errorf("failed to save state: %w", err)
			}
			if e.Tasks != nil && e.Stats != nil {
				logger.Info("New day, tasks reset", "date", e.Tasks.LastReset)
			}

		case tracker.OpenTab:
			if d.opener == nil {
				continue
			}
			if err := d.opener.Open(e.Platform); err != nil {
				logger.Error("Failed to open practice page", "platform", e.Platform, "error", err)
			}

		case tracker.RearmAlarm:
			if d.rearm == nil {
				logger.Warn("Reminder alarm not re-armed: no scheduler in this process", "interval", e.Interval)
				continue
			}
			if err := d.rearm(e.Interval); err != nil {
				logger.Error("Failed to re-arm reminder alarm", "interval", e.Interval, "error", err)
			}
		}
	}
	return nil
}
