package logger

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *LoggerConfig
		expectError bool
		level       zerolog.Level
	}{
		{
			name: "valid production environment",
			config: &LoggerConfig{
				ServiceName: "test-service",
				Env:         "prod",
				Level:       "info",
				TimeFormat:  "unix",
				Fields:      map[string]interface{}{"key": "value"},
			},
			level: zerolog.InfoLevel,
		},
		{
			name:        "invalid configuration - wrong env",
			config:      &LoggerConfig{Env: "wrong-env", Level: "debug"},
			expectError: true,
		},
		{
			name:        "invalid log level",
			config:      &LoggerConfig{Env: "prod", Level: "invalid-level"},
			expectError: true,
		},
		{
			name:        "invalid time format",
			config:      &LoggerConfig{Env: "prod", TimeFormat: "iso"},
			expectError: true,
		},
		{
			name:   "valid staging environment",
			config: &LoggerConfig{Env: "staging", Level: "warn", OutputTarget: "stderr"},
			level:  zerolog.WarnLevel,
		},
		{
			name:   "valid development environment without debug",
			config: &LoggerConfig{Env: "dev", Level: "info", Format: "json"},
			level:  zerolog.InfoLevel,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := New(test.config)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.level, zerolog.GlobalLevel())
			assert.Equal(t, test.level, l.GetLevel())
		})
	}
}

func TestSetDefaults(t *testing.T) {
	dev := &LoggerConfig{Env: "dev"}
	dev.setDefaults()
	assert.Equal(t, "debug", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.True(t, dev.WithCaller)
	assert.False(t, dev.Stacktrace)

	prod := &LoggerConfig{}
	prod.setDefaults()
	assert.Equal(t, "prod", prod.Env)
	assert.Equal(t, "info", prod.Level)
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "rotation-advisor-service", prod.ServiceName)
	assert.True(t, prod.Stacktrace)
	assert.NotNil(t, prod.Fields)
}

func TestTimeLayout(t *testing.T) {
	assert.Equal(t, time.RFC3339, timeLayout("rfc3339"))
	assert.Equal(t, time.RFC3339Nano, timeLayout("rfc3339nano"))
	assert.Equal(t, zerolog.TimeFormatUnixMs, timeLayout("unix_ms"))
}

func TestNew_DebugLogFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = New(&LoggerConfig{ServiceName: "integration-test", Env: "dev", Level: "debug"})
	require.NoError(t, err)

	_, statErr := os.Stat(DebugLogPath)
	assert.NoError(t, statErr)
}
