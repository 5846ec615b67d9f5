package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZap_ErrorfAttachesErrorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("run_id", "r-1")

	log.Errorf(errors.New("supplier down"), "Import failed. provider: %s", "mock")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "Import failed. provider: mock", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "supplier down", fields["error"])
	assert.Equal(t, "r-1", fields["run_id"])
}

func TestFromZap_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := FromZap(zap.New(core))

	log.Debugf("debug")
	log.Infof("info")
	log.Warnf("warn")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

type plainLogger struct{ Logger }

func TestSync(t *testing.T) {
	assert.NoError(t, Sync(NewNop()))
	assert.NoError(t, Sync(plainLogger{}))
}
