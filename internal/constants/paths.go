// Package constants contains names and paths shared across precommit.
package constants

const (
	// AppName is used for XDG directory paths and log context.
	AppName = "precommit"

	// ConfigFilename is the default project config file name.
	ConfigFilename = ".precommit.yml"

	// LogFilename is the default log file name.
	LogFilename = "precommit.log"

	// DatabaseFilename is the SQLite database holding state and run history.
	DatabaseFilename = "precommit.db"
)

// Environment variables
const (
	// SkipEnv skips checking for one invocation when set to 1, true, yes or on.
	SkipEnv = "PRECOMMIT_SKIP"

	// ProjectDirEnv overrides project root detection.
	ProjectDirEnv = "PRECOMMIT_PROJECT_DIR"
)
