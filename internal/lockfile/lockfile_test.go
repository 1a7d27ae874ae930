package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Lock
		wantErr bool
	}{
		{"valid", "8080|1234|s3cret", Lock{Port: 8080, PID: 1234, Secret: "s3cret"}, false},
		{"trailing newline", "8080|1234|s3cret\n", Lock{Port: 8080, PID: 1234, Secret: "s3cret"}, false},
		{"too few parts", "8080|1234", Lock{}, true},
		{"too many parts", "8080|1234|a|b", Lock{}, true},
		{"empty port", "|1234|s3cret", Lock{}, true},
		{"non-numeric port", "http|1234|s3cret", Lock{}, true},
		{"port zero", "0|1234|s3cret", Lock{}, true},
		{"port too large", "65536|1234|s3cret", Lock{}, true},
		{"bad pid", "8080|abc|s3cret", Lock{}, true},
		{"negative pid", "8080|-1|s3cret", Lock{}, true},
		{"empty secret", "8080|1234|  ", Lock{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformed", tt.content, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.content, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.content, got, tt.want)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := Path(t.TempDir())
	l := Lock{Port: 43210, PID: 99, Secret: "abc-def"}

	if err := Write(path, l); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("lockfile mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != l {
		t.Errorf("Read() = %+v, want %+v", got, l)
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "dailycode.lock"))
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("Read() error = %v, want ErrNotRunning", err)
	}
}

func TestRemoveOnlyOwnLockfile(t *testing.T) {
	path := Path(t.TempDir())
	if err := Write(path, Lock{Port: 1, PID: 1, Secret: "successor"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := Remove(path, "previous"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("lockfile of another daemon was removed")
	}

	if err := Remove(path, "successor"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("own lockfile was not removed")
	}

	if err := Remove(path, "successor"); err != nil {
		t.Fatalf("Remove of missing lockfile failed: %v", err)
	}
}

func TestVerify(t *testing.T) {
	old := findProcessFunc
	defer func() { findProcessFunc = old }()

	l := Lock{Port: 8080, PID: 42, Secret: "s"}

	findProcessFunc = func(pid int) (ps.Process, error) { return nil, nil }
	if err := Verify(l); !errors.Is(err, ErrNotRunning) {
		t.Errorf("missing process: error = %v, want ErrNotRunning", err)
	}

	findProcessFunc = func(pid int) (ps.Process, error) { return nil, errors.New("ps failed") }
	if err := Verify(l); !errors.Is(err, ErrNotRunning) {
		t.Errorf("lookup failure: error = %v, want ErrNotRunning", err)
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "other-app"}, nil
	}
	if err := Verify(l); !errors.Is(err, ErrNotRunning) {
		t.Errorf("wrong executable: error = %v, want ErrNotRunning", err)
	}

	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "dailycode"}, nil
	}
	if err := Verify(l); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFind(t *testing.T) {
	old := findProcessFunc
	defer func() { findProcessFunc = old }()
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "dailycode"}, nil
	}

	home := t.TempDir()
	if _, err := Find(home, nil); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Find() with no lockfile error = %v, want ErrNotRunning", err)
	}

	want := Lock{Port: 5555, PID: 7, Secret: "s"}
	if err := Write(Path(home), want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Find(home, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if got != want {
		t.Errorf("Find() = %+v, want %+v", got, want)
	}

	reject := func(Lock) error { return ErrNotRunning }
	if _, err := Find(home, reject); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Find() with rejecting verifier error = %v, want ErrNotRunning", err)
	}
}
