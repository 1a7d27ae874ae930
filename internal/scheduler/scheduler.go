// Package scheduler provides named periodic alarms. Each alarm fires once
// after its initial delay and then every period until cleared.
package scheduler

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidPeriod = errors.New("scheduler: period must be positive")
	ErrStopped       = errors.New("scheduler: stopped")
)

// Fire is delivered on C each time an alarm goes off.
type Fire struct {
	Name string
	At   time.Time
}

// Alarm describes an armed alarm.
type Alarm struct {
	Name   string
	Period time.Duration
	Next   time.Time
}

type alarm struct {
	period time.Duration
	next   atomic.Int64 // unix nanos of the next fire
	stopCh chan struct{}
	doneCh chan struct{}
}

type Scheduler struct {
	mu      sync.Mutex
	alarms  map[string]*alarm
	out     chan Fire
	stopped bool
	dropped uint64
}

func New(bufferSize int) *Scheduler {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Scheduler{
		alarms: make(map[string]*alarm),
		out:    make(chan Fire, bufferSize),
	}
}

// C returns the channel alarm fires are delivered on. Fires that find the
// channel full are dropped.
func (s *Scheduler) C() <-chan Fire {
	return s.out
}

// Create arms name to fire after delay and then every period. An existing
// alarm with the same name is replaced.
func (s *Scheduler) Create(name string, delay, period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}

	if old, ok := s.alarms[name]; ok {
		old.stop()
	}

	a := &alarm{
		period: period,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	a.next.Store(time.Now().Add(delay).UnixNano())
	s.alarms[name] = a
	go s.run(name, a, delay)
	return nil
}

// Clear disarms name. It reports whether an alarm was armed.
func (s *Scheduler) Clear(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[name]
	if !ok {
		return false
	}
	delete(s.alarms, name)
	a.stop()
	return true
}

// Get returns the armed alarm called name.
func (s *Scheduler) Get(name string) (Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[name]
	if !ok {
		return Alarm{}, false
	}
	return Alarm{Name: name, Period: a.period, Next: time.Unix(0, a.next.Load())}, true
}

// List returns all armed alarms sorted by name.
func (s *Scheduler) List() []Alarm {
	s.mu.Lock()
	names := make([]string, 0, len(s.alarms))
	for name := range s.alarms {
		names = append(names, name)
	}
	s.mu.Unlock()

	sort.Strings(names)
	out := make([]Alarm, 0, len(names))
	for _, name := range names {
		if a, ok := s.Get(name); ok {
			out = append(out, a)
		}
	}
	return out
}

// Stop disarms every alarm and closes C.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for name, a := range s.alarms {
		delete(s.alarms, name)
		a.stop()
	}
	s.mu.Unlock()
	close(s.out)
}

func (s *Scheduler) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// stop signals the alarm goroutine and waits for it to exit, so no fire
// from a cleared alarm is sent afterwards.
func (a *alarm) stop() {
	close(a.stopCh)
	<-a.doneCh
}

func (s *Scheduler) run(name string, a *alarm, delay time.Duration) {
	defer close(a.doneCh)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case now := <-timer.C:
			a.next.Store(now.Add(a.period).UnixNano())
			select {
			case s.out <- Fire{Name: name, At: now}:
			default:
				atomic.AddUint64(&s.dropped, 1)
			}
			timer.Reset(a.period)
		case <-a.stopCh:
			return
		}
	}
}
