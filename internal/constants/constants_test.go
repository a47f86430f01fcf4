package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "precommit.db", DatabaseFilename)
}

func TestLogFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "precommit.log", LogFilename)
}

func TestConfigFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ".precommit.yml", ConfigFilename)
}

func TestSkipEnv(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "PRECOMMIT_SKIP", SkipEnv)
}
