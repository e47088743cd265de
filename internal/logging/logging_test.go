package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Warn("field absent", Fields{"key": "owner.login"})
	l.Debug("decoded", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "field absent", entries[0].Message)
	assert.Equal(t, "owner.login", entries[0].ContextMap()["key"])
	assert.Empty(t, entries[1].Context)
}

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.InfoLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Info("fetched", Fields{"status": 200})
	l.Debug("hidden", nil)

	out := buf.String()
	assert.Contains(t, out, `"msg":"fetched"`)
	assert.Contains(t, out, `"status":200`)
	assert.NotContains(t, out, "hidden")
}

func TestNew(t *testing.T) {
	l, err := New(BackendZap, "info")
	require.NoError(t, err)
	assert.IsType(t, ZapLogger{}, l)

	l, err = New(BackendLogrus, "debug")
	require.NoError(t, err)
	assert.IsType(t, LogrusLogger{}, l)

	l, err = New(BackendNone, "")
	require.NoError(t, err)
	assert.IsType(t, NopLogger{}, l)

	_, err = New(BackendZap, "loud")
	assert.Error(t, err)

	_, err = New("syslog", "info")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	assert.IsType(t, ZapLogger{}, OrNop(ZapLogger{L: zap.NewNop()}))
}
