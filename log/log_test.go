package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type shortID string

func (s shortID) ShortString() string { return string(s)[:3] }

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(JSONEncoder)
	require.NoError(t, err)
	logger := newWithWriter(&buf, "test", zap.NewAtomicLevelAt(zapcore.InfoLevel), enc)

	ctx := WithRequestID(context.Background(), "req-1")
	logger.Debug("hidden")
	logger.Info("visible", ZShortStringer("id", shortID("abcdef")), ZContext(ctx))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "visible", entry["msg"])
	require.Equal(t, "test", entry["logger"])
	require.Equal(t, "abc", entry["id"])
	require.Equal(t, "req-1", entry["request_id"])
}

func TestHooks(t *testing.T) {
	var entries []string
	enc, err := NewEncoder(ConsoleEncoder)
	require.NoError(t, err)
	logger := newWithWriter(&bytes.Buffer{}, "hooks", zap.NewAtomicLevelAt(zapcore.WarnLevel), enc,
		func(e zapcore.Entry) error {
			entries = append(entries, e.Message)
			return nil
		})
	logger.Info("skipped")
	logger.Warn("kept")
	require.Equal(t, []string{"kept"}, entries)
}

func TestNew(t *testing.T) {
	_, err := New("app", "info", JSONEncoder)
	require.NoError(t, err)
	_, err = New("app", "loud", JSONEncoder)
	require.Error(t, err)
	_, err = New("app", "info", "xml")
	require.ErrorContains(t, err, "unknown log encoder")
}

func TestRequestID(t *testing.T) {
	_, ok := ExtractRequestID(context.Background())
	require.False(t, ok)

	ctx := WithNewRequestID(context.Background())
	id, ok := ExtractRequestID(ctx)
	require.True(t, ok)
	require.Len(t, id, 36)
}
