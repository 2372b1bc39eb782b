package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestInitAndFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("Test", "this should be filtered out")
	Info("Test", "hello %s", "world")

	out := buf.String()
	assert.NotContains(t, out, "filtered out")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "subsystem=Test")
}

func TestErrorIncludesErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("Store", assert.AnError, "save failed")

	out := buf.String()
	assert.Contains(t, out, "save failed")
	assert.True(t, strings.Contains(out, "error="), "expected error attribute, got: %s", out)
}
