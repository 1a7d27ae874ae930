package constants

import "time"

const (
	AppName            = "dailycode"
	DefaultKeyringUser = "database-connection"
	DefaultHome        = "~/.config/dailycode"
	DefaultStoreName   = "dailycode.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// AlarmName identifies the periodic reminder trigger
	AlarmName = "dailyCodeReminder"
	// AlarmInitialDelay is how long after (re)arming the first alarm fires
	AlarmInitialDelay = time.Minute

	// HistoryLimit is the number of most recent days retained in stats history
	HistoryLimit = 30

	// StreakFireThreshold is the streak length at which the popup adds a 🔥
	StreakFireThreshold = 7

	// Daemon constants
	LockfileName        = "dailycode.lock"
	SenderHeader        = "X-Dailycode-Sender"
	MessagePath         = "/message"
	DaemonHost          = "127.0.0.1"
	DefaultListenAddr   = DaemonHost + ":0"
	DefaultStartupDelay = 3 * time.Second
	ClientTimeout       = 5 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dailycode-"
	BackupFileSuffix = ".db"
)

const (
	// Logging constants
	LogDirName    = "logs"
	LogFileName   = "dailycode.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)

// KeyringStore is the store location that reads the Postgres connection
// string from the OS keyring.
const KeyringStore = "keyring"
