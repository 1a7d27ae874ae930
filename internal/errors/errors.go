// Package errors renders command failures for the terminal.
package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/dailycode/internal/client"
	"github.com/julianstephens/dailycode/internal/keyring"
	"github.com/julianstephens/dailycode/internal/lockfile"
	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/storage"
)

var hints = []struct {
	target error
	hint   string
}{
	{client.ErrDaemonNotRunning, "start it with 'dailycode daemon'"},
	{lockfile.ErrNotRunning, "start it with 'dailycode daemon'"},
	{lockfile.ErrMalformed, "remove the stale lockfile and restart the daemon"},
	{client.ErrRemoteStorage, "check the daemon log for details"},
	{storage.ErrEmbeddedCredentials, "store the connection string with 'dailycode keyring set' and use --store keyring"},
	{storage.ErrInvalidConnectionString, "use a postgres:// URL or a key=value DSN"},
	{keyring.ErrNotFound, "run 'dailycode keyring set' first"},
	{keyring.ErrKeyringUnavailable, "pass the connection string with --store instead"},
}

// Hint returns a suggested next step for err, or "" when none applies.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format renders err with an "Error: " prefix and, when one is known, a hint line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Print writes the formatted error to w. It is a no-op for nil.
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, Format(err))
}

// Fatal logs err, prints it to stderr and exits with code 1. A nil err is ignored.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	Print(os.Stderr, err)
	os.Exit(1)
}

// Fatalf is Fatal with a formatted message.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
