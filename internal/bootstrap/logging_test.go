package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeLoggingConfig(t *testing.T, content string) string {
	t.Helper()
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "conf"), 0o755))
	require.NoError(t, os.WriteFile(LoggingConfigPath(home), []byte(content), 0o644))
	return home
}

const testLoggingConfig = `
level: warn
encoding: console
outputPaths: [stderr]
errorOutputPaths: [stderr]
`

func TestInitLogging(t *testing.T) {
	home := writeLoggingConfig(t, testLoggingConfig)

	logger, err := InitLogging(home, "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestInitLoggingLevelOverride(t *testing.T) {
	home := writeLoggingConfig(t, testLoggingConfig)

	logger, err := InitLogging(home, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestInitLoggingEmptyFileUsesDefaults(t *testing.T) {
	home := writeLoggingConfig(t, "")

	logger, err := InitLogging(home, "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestInitLoggingErrors(t *testing.T) {
	tests := []struct {
		name  string
		home  func(t *testing.T) string
		level string
	}{
		{
			name: "missing file",
			home: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "malformed yaml",
			home: func(t *testing.T) string { return writeLoggingConfig(t, "level: [unclosed") },
		},
		{
			name: "unknown level in file",
			home: func(t *testing.T) string { return writeLoggingConfig(t, "level: loud\n") },
		},
		{
			name: "unknown encoding",
			home: func(t *testing.T) string {
				return writeLoggingConfig(t, "encoding: morse\noutputPaths: [stderr]\n")
			},
		},
		{
			name:  "bad override",
			home:  func(t *testing.T) string { return writeLoggingConfig(t, testLoggingConfig) },
			level: "chatty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := InitLogging(tt.home(t), tt.level)
			assert.Error(t, err)
			assert.Nil(t, logger)
		})
	}
}
