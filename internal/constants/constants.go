package constants

const (
	AppName            = "studymon"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/studymon"
	DefaultConfigPath  = "~/.config/studymon/studymon.db"
	ConfigFileName     = "config.jsonc"
	Version            = "v0.1.0"

	// KeyringConfigValue selects the connection string stored in the OS keyring.
	KeyringConfigValue = "keyring"

	// EnvDBConnection supplies a PostgreSQL connection string.
	EnvDBConnection = "STUDYMON_DB_CONNECTION"

	// Durable record keys
	RecordSubjects   = "subjects"
	RecordTodayTasks = "todayTasks"

	// PayloadMediaType tags a serialized transfer payload
	PayloadMediaType = "application/json"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studymon-"
	BackupFileSuffix = ".db"

	// Lock constants
	LockFileName = "studymon.lock"
)

// SessionState represents the current state of the TUI application
type SessionState int

const (
	StateToday SessionState = iota
	StateSubjects
	StateAddSubject
	StateAddTask
	StateConfirmDelete
)
