package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestGetLogsNewestFirstWithLevelFilter(t *testing.T) {
	path := writeLines(t,
		`{"level":"INFO","timestamp":"2026-01-01T10:00:00.000Z","message":"first","module":"Chat"}`,
		`not json`,
		`{"level":"WARN","timestamp":"2026-01-01T10:01:00.000Z","message":"second","module":"Chat"}`,
		`{"level":"INFO","timestamp":"2026-01-01T10:02:00.000Z","message":"third","module":"Payment"}`,
	)
	l := &ZapLogger{filePath: path}

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.NotEmpty(t, all[0].Id)

	info, err := l.GetLogs("info", 10, 0)
	require.NoError(t, err)
	require.Len(t, info, 2)

	page, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Message)

	empty, err := l.GetLogs("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetLogById(t *testing.T) {
	path := writeLines(t, `{"level":"ERROR","timestamp":"2026-01-01T10:00:00.000Z","message":"boom","details":{"order":"12"}}`)
	l := &ZapLogger{filePath: path}

	logs, err := l.GetLogs("", 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry, err := l.GetLogById(logs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "12", entry.Details["order"])

	_, err = l.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestMissingFileIsEmpty(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "absent.json")}
	logs, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestScrubMasksSensitiveKeys(t *testing.T) {
	in := map[string]interface{}{"Signature_Key": "abc", "order_id": "12"}
	out := scrub(in)
	assert.Equal(t, redacted, out["Signature_Key"])
	assert.Equal(t, "12", out["order_id"])
	assert.Equal(t, "abc", in["Signature_Key"])
}

func TestIsolatedLoggerWritesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.log")
	l := NewIsolatedLogger(path)
	l.Info("Hub", "Client registered", map[string]interface{}{"user_id": "alice", "token": "secret"})
	require.NoError(t, l.Sync())

	logs, err := l.GetLogs("INFO", 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Hub", logs[0].Module)
	assert.Equal(t, redacted, logs[0].Details["token"])
}
