package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forcekit/forcekit/internal/logging"
)

func TestNew_DefaultsToWarn(t *testing.T) {
	t.Setenv("FORCEKIT_LOG_LEVEL", "")

	logger := logging.New("test")

	assert.True(t, logger.IsWarn())
	assert.False(t, logger.IsInfo())
}

func TestNew_LevelFromEnvironment(t *testing.T) {
	t.Setenv("FORCEKIT_LOG_LEVEL", "debug")

	logger := logging.New("test")

	assert.True(t, logger.IsDebug())
}

func TestNew_UnknownLevelFallsBackToWarn(t *testing.T) {
	t.Setenv("FORCEKIT_LOG_LEVEL", "chatty")

	logger := logging.New("test")

	assert.True(t, logger.IsWarn())
	assert.False(t, logger.IsInfo())
}

func TestNew_NamesLogger(t *testing.T) {
	logger := logging.New("scanner")

	assert.Equal(t, "scanner", logger.Name())
}
