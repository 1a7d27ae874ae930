package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/dailycode/internal/client"
	"github.com/julianstephens/dailycode/internal/constants"
	"github.com/julianstephens/dailycode/internal/lockfile"
	"github.com/julianstephens/dailycode/internal/models"
	"github.com/julianstephens/dailycode/internal/protocol"
	"github.com/julianstephens/dailycode/internal/storage"
)

type recordingOpener struct {
	mu     sync.Mutex
	opened []models.Platform
}

func (r *recordingOpener) Open(p models.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, p)
	return nil
}

func (r *recordingOpener) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.opened)
}

func noon() time.Time {
	return time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)
}

func setupDaemon(t *testing.T, startupDelay time.Duration) (*Daemon, *storage.MemoryStore, *recordingOpener, string, func()) {
	t.Helper()

	home := t.TempDir()
	store := storage.NewMemoryStore()
	o := &recordingOpener{}
	d := New(Config{Home: home, ListenAddr: "127.0.0.1:0", StartupDelay: startupDelay, Clock: noon}, store, o)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	select {
	case <-d.Ready():
	case err := <-errCh:
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}

	cleanup := func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	}

	return d, store, o, home, cleanup
}

func newTestClient(home string) *client.Client {
	return client.New(home, client.WithVerifier(func(lockfile.Lock) error { return nil }))
}

func TestDaemonServesStatus(t *testing.T) {
	_, _, _, home, cleanup := setupDaemon(t, time.Hour)
	defer cleanup()

	resp, err := newTestClient(home).Send(context.Background(), protocol.GetStatus())
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Settings == nil || *resp.Settings != models.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", resp.Settings)
	}
	if resp.Tasks == nil || resp.Tasks.LastReset != "2024-03-04" {
		t.Errorf("tasks = %+v, want tasks for 2024-03-04", resp.Tasks)
	}
}

func TestDaemonWritesLockfile(t *testing.T) {
	d, _, _, home, cleanup := setupDaemon(t, time.Hour)

	l, err := lockfile.Read(lockfile.Path(home))
	if err != nil {
		t.Fatalf("Read lockfile failed: %v", err)
	}
	if l.PID != os.Getpid() || l.Secret != d.Secret() {
		t.Errorf("lockfile = %+v, want own pid and secret", l)
	}
	if !strings.HasSuffix(d.Addr().String(), ":"+strconv.Itoa(l.Port)) {
		t.Errorf("lockfile port %d does not match %s", l.Port, d.Addr())
	}

	cleanup()

	if _, err := os.Stat(lockfile.Path(home)); !os.IsNotExist(err) {
		t.Error("lockfile not removed on shutdown")
	}
}

func TestDaemonRejectsForeignSender(t *testing.T) {
	d, store, _, _, cleanup := setupDaemon(t, time.Hour)
	defer cleanup()

	readsBefore, writesBefore := store.Counts()

	url := "http://" + d.Addr().String() + constants.MessagePath
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"type":"MARK_COMPLETE","platform":"leetcode"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SenderHeader, "not-the-secret")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", res.StatusCode)
	}
	if reads, writes := store.Counts(); reads != readsBefore || writes != writesBefore {
		t.Errorf("storage touched by rejected sender: reads %d->%d writes %d->%d", readsBefore, reads, writesBefore, writes)
	}
}

func TestDaemonArmsAndRearmsReminder(t *testing.T) {
	d, _, _, home, cleanup := setupDaemon(t, time.Hour)
	defer cleanup()

	a, ok := d.Scheduler().Get(constants.AlarmName)
	if !ok {
		t.Fatal("reminder alarm not armed")
	}
	if a.Period != 30*time.Minute {
		t.Errorf("period = %v, want 30m", a.Period)
	}

	settings := models.DefaultSettings()
	settings.ReminderInterval = 45
	resp, err := newTestClient(home).Send(context.Background(), protocol.UpdateSettings(settings))
	if err != nil || !resp.Success {
		t.Fatalf("UPDATE_SETTINGS = %+v, %v", resp, err)
	}

	a, ok = d.Scheduler().Get(constants.AlarmName)
	if !ok {
		t.Fatal("reminder alarm missing after re-arm")
	}
	if a.Period != 45*time.Minute {
		t.Errorf("period = %v, want 45m", a.Period)
	}
	if len(d.Scheduler().List()) != 1 {
		t.Errorf("expected exactly one alarm, got %v", d.Scheduler().List())
	}
}

func TestDaemonStartupCheckOpensPages(t *testing.T) {
	_, _, o, _, cleanup := setupDaemon(t, 10*time.Millisecond)
	defer cleanup()

	deadline := time.Now().Add(2 * time.Second)
	for o.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if o.count() != 2 {
		t.Errorf("opened %d pages, want 2", o.count())
	}
}

func TestDaemonMarkCompleteThroughClient(t *testing.T) {
	_, store, _, home, cleanup := setupDaemon(t, time.Hour)
	defer cleanup()

	c := newTestClient(home)
	resp, err := c.Send(context.Background(), protocol.SetTask(models.PlatformLeetcode, true))
	if err != nil || !resp.Success {
		t.Fatalf("MARK_COMPLETE = %+v, %v", resp, err)
	}

	snap, err := store.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if !snap.Tasks.Leetcode {
		t.Error("leetcode not marked complete")
	}
}

func TestDaemonStorageErrorReachesClient(t *testing.T) {
	_, store, _, home, cleanup := setupDaemon(t, time.Hour)
	defer cleanup()

	store.FailWith(errors.New("disk gone"), nil)

	_, err := newTestClient(home).Send(context.Background(), protocol.GetStatus())
	if !errors.Is(err, client.ErrRemoteStorage) {
		t.Errorf("Send error = %v, want ErrRemoteStorage", err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	d, _, _, _, cleanup := setupDaemon(t, time.Hour)
	cleanup()

	_, err := d.Submit(context.Background(), protocol.Sender{ID: d.Secret()}, protocol.GetStatus())
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Submit error = %v, want ErrStopped", err)
	}
}

func TestReminderPeriodResanitizes(t *testing.T) {
	tests := []struct {
		minutes int
		want    time.Duration
	}{
		{30, 30 * time.Minute},
		{15, 15 * time.Minute},
		{120, 120 * time.Minute},
		{5, 30 * time.Minute},
		{500, 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := reminderPeriod(tt.minutes); got != tt.want {
			t.Errorf("reminderPeriod(%d) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}
