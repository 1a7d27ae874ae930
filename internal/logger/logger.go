// Package logger writes the application log to a rotating file under the
// dailycode home. Entries logged before Init, or after Close, are dropped.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/dailycode/internal/constants"
)

var (
	// Logger is the process-wide logger.
	Logger = log.New(io.Discard)

	file *lumberjack.Logger
)

type Config struct {
	Debug     bool // debug level, caller info, mirrored to stderr
	Verbose   bool // info level; set for the daemon
	ConfigDir string
}

func (c Config) level() log.Level {
	switch {
	case c.Debug:
		return log.DebugLevel
	case c.Verbose:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// Path returns the log file location under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, constants.LogDirName, constants.LogFileName)
}

// Init replaces Logger with one writing to Path(cfg.ConfigDir).
func Init(cfg Config) error {
	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	_ = Close()

	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   true,
	}

	var out io.Writer = file
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, file)
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           cfg.level(),
		Prefix:          constants.AppName,
	})
	return nil
}

// Close releases the log file and resets Logger to discard.
func Close() error {
	Logger = log.New(io.Discard)
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func Debug(msg string, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

func Info(msg string, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

func Warn(msg string, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

func Error(msg string, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }
