package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml-2024-01-01_10-00-00.log")

	ctx, closeFn, err := WithFileSink(context.Background(), "xml_parser", path, zapcore.InfoLevel)
	require.NoError(t, err)

	Infof(ctx, "processing file %s", "doc.xml")
	Debugf(ctx, "not written at info level")
	Warnf(ctx, "region code %d not found", 150)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "processing file doc.xml")
	assert.Contains(t, lines[0], "TestWithFileSink")
	assert.Contains(t, lines[1], "WARN")
	assert.Contains(t, lines[1], "region code 150 not found")
}

func TestWithFileSink_SeparateFilesPerInvocation(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.log")
	second := filepath.Join(dir, "b.log")

	ctxA, closeA, err := WithFileSink(context.Background(), "a", first, zapcore.InfoLevel)
	require.NoError(t, err)
	ctxB, closeB, err := WithFileSink(context.Background(), "b", second, zapcore.InfoLevel)
	require.NoError(t, err)

	Info(ctxA, "only in a")
	Info(ctxB, "only in b")
	require.NoError(t, closeA())
	require.NoError(t, closeB())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Contains(t, string(a), "only in a")
	assert.NotContains(t, string(a), "only in b")
	assert.Contains(t, string(b), "only in b")
	assert.NotContains(t, string(b), "only in a")
}

func TestWithFileSink_BadPath(t *testing.T) {
	_, _, err := WithFileSink(context.Background(), "x", filepath.Join(t.TempDir(), "missing", "x.log"), zapcore.InfoLevel)
	assert.Error(t, err)
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	l := zap.NewExample()
	SetGlobal(l)
	t.Cleanup(func() { SetGlobal(zap.NewNop()) })

	assert.Same(t, l, FromContext(context.Background()))

	other := zap.NewNop()
	assert.Same(t, other, FromContext(ToContext(context.Background(), other)))
}
