package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"component": "test"})

	log.WithError(errors.New("boom")).Error("query failed", map[string]interface{}{
		"report": "severity",
		"cause":  errors.New("inner"),
	})
	log.Debug("debug line", nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "query failed", entries[0].Message)
		assert.Equal(t, "test", fields["component"])
		assert.Equal(t, "severity", fields["report"])
		assert.Equal(t, "boom", fields["error"])
		assert.Equal(t, "inner", fields["cause"])
		assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	}
}

func TestNew_Formats(t *testing.T) {
	assert.NotNil(t, New("debug", "json"))
	assert.NotNil(t, New("info", "console"))
	assert.NotNil(t, NewZapAdapter(New("warn", "json")))
	assert.NotNil(t, NewNoOpLogger())
	NewTestLogger(t).Info("hello", map[string]interface{}{"k": 1})
}
