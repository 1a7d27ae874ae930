// Package lockfile records where a running daemon listens. The file holds
// "port|pid|secret" on a single line and is readable only by its owner.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/dailycode/internal/constants"
)

var (
	// ErrNotRunning is returned when no lockfile exists or it names a dead process.
	ErrNotRunning = errors.New("dailycode daemon is not running")
	// ErrMalformed is returned when the lockfile content cannot be parsed.
	ErrMalformed = errors.New("lockfile is malformed")
)

var findProcessFunc = ps.FindProcess

// Lock is the content of a lockfile.
type Lock struct {
	Port   int
	PID    int
	Secret string
}

// Path returns the lockfile location under home.
func Path(home string) string {
	return filepath.Join(home, constants.LockfileName)
}

func (l Lock) String() string {
	return fmt.Sprintf("%d|%d|%s", l.Port, l.PID, l.Secret)
}

// Write stores l at path with owner-only permissions.
func Write(path string, l Lock) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(l.String()), 0600); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}

// Remove deletes the lockfile at path if it still carries secret, so a
// daemon never removes a lockfile written by its successor.
func Remove(path, secret string) error {
	l, err := Read(path)
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return nil
		}
		return err
	}
	if l.Secret != secret {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Read parses the lockfile at path.
func Read(path string) (Lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Lock{}, ErrNotRunning
		}
		return Lock{}, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return Parse(string(content))
}

// Parse validates lockfile content.
func Parse(content string) (Lock, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Lock{}, ErrMalformed
	}

	if strings.TrimSpace(parts[0]) == "" {
		return Lock{}, fmt.Errorf("%w: port is empty", ErrMalformed)
	}
	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return Lock{}, fmt.Errorf("%w: invalid port number", ErrMalformed)
	}
	if port < 1 || port > 65535 {
		return Lock{}, fmt.Errorf("%w: port number %d is outside valid range (1-65535)", ErrMalformed, port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid < 1 {
		return Lock{}, fmt.Errorf("%w: invalid process ID", ErrMalformed)
	}

	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Lock{}, fmt.Errorf("%w: secret is empty", ErrMalformed)
	}

	return Lock{Port: port, PID: pid, Secret: secret}, nil
}

// Verify checks that the process named in l is alive and is a dailycode binary.
func Verify(l Lock) error {
	process, err := findProcessFunc(l.PID)
	if err != nil || process == nil {
		return ErrNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return fmt.Errorf("%w: process with PID %d is %s", ErrNotRunning, l.PID, process.Executable())
	}
	return nil
}

// Find reads the lockfile under home and checks it with verify, or with
// Verify when verify is nil.
func Find(home string, verify func(Lock) error) (Lock, error) {
	if verify == nil {
		verify = Verify
	}
	l, err := Read(Path(home))
	if err != nil {
		return Lock{}, err
	}
	if err := verify(l); err != nil {
		return Lock{}, err
	}
	return l, nil
}
