package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "logwatch.log")
	require.NoError(t, Init(true, "debug", path, false))
	defer Set(nil)

	Debugf("window size=%d", 3)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "window size=3")
	assert.Contains(t, string(data), "DEBUG")
}

func TestInitDisabled(t *testing.T) {
	require.NoError(t, Init(false, "debug", "", true))
	Infof("dropped")
	assert.NotNil(t, L())
}
