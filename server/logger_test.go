package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggerWritesJSONFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "arena.log")
	require.NoError(t, InitLogger(path, "error"))

	// 文件 core 固定为 Debug 级别，不受 stderr 级别影响
	Log.Debugw("relay dropped", "sid", "S1")
	SyncLogger()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "relay dropped", entry["msg"])
	assert.Equal(t, "S1", entry["sid"])
	assert.Equal(t, "debug", entry["level"])
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })
	Log = zap.NewNop().Sugar()

	err := InitLogger(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)
}
