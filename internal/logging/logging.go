// Package logging builds the named hclog loggers used across adapters.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

const levelEnv = "FORCEKIT_LOG_LEVEL"

// New returns a named logger writing to stderr. Hook and MCP invocations
// share stdout with their protocol payloads, so diagnostics never go there.
// The level comes from FORCEKIT_LOG_LEVEL and defaults to warn.
func New(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: os.Stderr,
		Level:  level(),
	})
}

func level() hclog.Level {
	raw := os.Getenv(levelEnv)
	if raw == "" {
		return hclog.Warn
	}
	if lvl := hclog.LevelFromString(raw); lvl != hclog.NoLevel {
		return lvl
	}
	return hclog.Warn
}
