package main

import (
	"errors"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dailycode/internal/cli"
	"github.com/julianstephens/dailycode/internal/config"
	"github.com/julianstephens/dailycode/internal/constants"
	apperrors "github.com/julianstephens/dailycode/internal/errors"
	"github.com/julianstephens/dailycode/internal/keyring"
	"github.com/julianstephens/dailycode/internal/logger"
	"github.com/julianstephens/dailycode/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Home    string `help:"Directory holding config.yaml, logs, the lockfile and the default store." default:"${home}" env:"DAILYCODE_HOME"`
	Store   string `help:"Store location: SQLite path, .json path, 'keyring', or a PostgreSQL URL without a password. Overrides config.yaml."`
	Debug   bool   `help:"Log at debug level and mirror logs to stderr."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize dailycode storage."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      cli.TuiCmd      `cmd:"" help:"Open the interactive popup." default:"1"`
	Daemon   cli.DaemonCmd   `cmd:"" help:"Run the background reminder worker."`
	Status   cli.StatusCmd   `cmd:"" help:"Show today's tasks and streaks."`
	Done     cli.DoneCmd     `cmd:"" help:"Mark today's task for a platform complete."`
	Undo     cli.UndoCmd     `cmd:"" help:"Mark today's task for a platform not completed."`
	Check    cli.CheckCmd    `cmd:"" help:"Run a reminder check now."`
	History  cli.HistoryCmd  `cmd:"" help:"Show recorded days."`
	Settings cli.SettingsCmd `cmd:"" help:"Show or change reminder settings."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite store backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage PostgreSQL credentials in the OS keyring."`
}

// resolveStore turns the configured store into a provider. Connection
// strings given directly must not carry a password; the keyring may.
func resolveStore(location string) (storage.Provider, error) {
	if storage.IsPostgres(location) {
		if err := storage.ValidateConnString(location); err != nil {
			return nil, err
		}
	}
	resolved, err := keyring.ResolveStore(location)
	if err != nil {
		return nil, err
	}
	// The keyring only ever holds Postgres connection strings, URL or DSN
	if location == constants.KeyringStore {
		return storage.NewPostgresStore(resolved), nil
	}
	return storage.New(resolved), nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily LeetCode and Codeforces practice reminder"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"home":    constants.DefaultHome,
		},
	)

	home := config.ExpandHome(CLI.Home)
	cfg, err := config.Load(home)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Store != "" {
		cfg.Store = config.ExpandHome(CLI.Store)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		Verbose:   strings.HasPrefix(command, "daemon"),
		ConfigDir: home,
	}); err != nil {
		apperrors.Fatalf("failed to start logging in %s: %w", home, err)
	}

	store, err := resolveStore(cfg.Store)
	if err != nil {
		// Keyring commands must work before any credentials exist
		if !strings.HasPrefix(command, "keyring") {
			apperrors.Fatal(err)
		}
		if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, storage.ErrEmbeddedCredentials) {
			logger.Warn("Store could not be resolved", "error", err)
		}
		store = storage.NewMemoryStore()
	}

	appCtx := cli.NewContext(home, cfg, store)
	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	apperrors.Fatal(err)
	_ = logger.Close()
}
