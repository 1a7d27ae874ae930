// Package daemon runs the background reminder worker: it arms the reminder
// alarm, serves protocol messages on a loopback port and opens practice
// pages when a check finds work left for the day.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/dispatch"
	"github.com/julianstephens/dailycode/internal/lockfile"
	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/opener"
	"github.com/julianstephens/dailycode/internal/protocol"
	"github.com/julianstephens/dailycode/internal/scheduler"
	"github.com/julianstephens/dailycode/internal/storage"
	"github.com/julianstephens/dailycode/internal/validation"
)

var ErrStopped = errors.New("daemon stopped")

// Config holds daemon settings
type Config struct {
	Home         string
	ListenAddr   string
	StartupDelay time.Duration
	Clock        func() time.Time
}

type request struct {
	ctx    context.Context
	sender protocol.Sender
	msg    protocol.Message
	reply  chan result
}

type result struct {
	resp protocol.Response
	err  error
}

type Daemon struct {
	cfg        Config
	store      storage.Provider
	sched      *scheduler.Scheduler
	dispatcher *dispatch.Dispatcher
	secret     string

	requests chan request
	ready    chan struct{}
	done     chan struct{}
	addr     net.Addr
}

func New(cfg Config, store storage.Provider, o opener.Opener) *Daemon {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = constants.DefaultListenAddr
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	d := &Daemon{
		cfg:      cfg,
		store:    store,
		sched:    scheduler.New(1),
		secret:   uuid.NewString(),
		requests: make(chan request),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.dispatcher = dispatch.New(d.secret, store, o,
		dispatch.WithRearm(d.armReminder),
		dispatch.WithClock(cfg.Clock),
	)
	return d
}

// Ready is closed once the daemon is listening and its lockfile is written.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Done is closed when Run returns.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Addr returns the listening address. Valid after Ready.
func (d *Daemon) Addr() net.Addr {
	return d.addr
}

// Secret returns the daemon's sender identity.
func (d *Daemon) Secret() string {
	return d.secret
}

// Scheduler exposes the alarm scheduler.
func (d *Daemon) Scheduler() *scheduler.Scheduler {
	return d.sched
}

// reminderPeriod converts a stored interval into the alarm period,
// re-sanitizing it on the way.
func reminderPeriod(minutes int) time.Duration {
	m := validation.SanitizeNumber(minutes, constants.MinReminderInterval, constants.MaxReminderInterval, constants.DefaultReminderInterval)
	return time.Duration(m) * time.Minute
}

// armReminder clears and recreates the reminder alarm.
func (d *Daemon) armReminder(interval time.Duration) error {
	period := reminderPeriod(int(interval / time.Minute))
	d.sched.Clear(constants.AlarmName)
	if err := d.sched.Create(constants.AlarmName, constants.AlarmInitialDelay, period); err != nil {
		return fmt.Errorf("failed to arm reminder alarm: %w", err)
	}
	logger.Info("Reminder alarm configured", "interval", period)
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	defer close(d.done)
	defer d.sched.Stop()

	if err := d.store.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer d.store.Close()

	settings, err := d.dispatcher.Startup()
	if err != nil {
		return fmt.Errorf("failed to prepare records: %w", err)
	}
	logger.Info("Daemon started", "store", d.store.GetConfigPath())

	if err := d.armReminder(time.Duration(settings.ReminderInterval) * time.Minute); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", d.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.cfg.ListenAddr, err)
	}
	d.addr = ln.Addr()

	srv := &http.Server{
		Handler:           NewServer(d).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lockPath := lockfile.Path(d.cfg.Home)
	lock := lockfile.Lock{Port: ln.Addr().(*net.TCPAddr).Port, PID: os.Getpid(), Secret: d.secret}
	if err := lockfile.Write(lockPath, lock); err != nil {
		return err
	}
	defer func() {
		if err := lockfile.Remove(lockPath, d.secret); err != nil {
			logger.Warn("Failed to remove lockfile", "error", err)
		}
	}()

	logger.Info("Listening for messages", "addr", d.addr.String())
	close(d.ready)

	return d.loop(ctx, serveErr)
}

// loop is the single worker: alarm fires, the startup check and messages
// are handled one at a time.
func (d *Daemon) loop(ctx context.Context, serveErr <-chan error) error {
	startupCheck := time.NewTimer(d.cfg.StartupDelay)
	defer startupCheck.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Daemon stopping")
			return nil

		case err := <-serveErr:
			return fmt.Errorf("message server failed: %w", err)

		case <-startupCheck.C:
			d.check("startup")

		case fire, ok := <-d.sched.C():
			if !ok {
				return ErrStopped
			}
			if fire.Name == constants.AlarmName {
				d.check("alarm")
			}

		case req := <-d.requests:
			resp, err := d.dispatcher.Handle(req.ctx, req.sender, req.msg)
			req.reply <- result{resp: resp, err: err}
		}
	}
}

func (d *Daemon) check(reason string) {
	logger.Debug("Running reminder check", "reason", reason)
	if err := d.dispatcher.Check(); err != nil {
		logger.Error("Reminder check failed", "reason", reason, "error", err)
	}
}

// Submit hands a message to the worker and waits for its reply.
func (d *Daemon) Submit(ctx context.Context, sender protocol.Sender, msg protocol.Message) (protocol.Response, error) {
	req := request{ctx: ctx, sender: sender, msg: msg, reply: make(chan result, 1)}

	select {
	case d.requests <- req:
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	case <-d.done:
		return protocol.Response{}, ErrStopped
	}

	select {
	case res := <-req.reply:
		return res.resp, res.err
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	}
}

// Local returns a dispatcher for use when no daemon is running. It shares
// the store but has no scheduler, so re-arm requests are skipped.
func Local(store storage.Provider, o opener.Opener, opts ...dispatch.Option) *dispatch.Dispatcher {
	return dispatch.New(uuid.NewString(), store, o, opts...)
}
