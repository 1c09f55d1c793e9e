package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "casemap.log")
	require.NoError(t, Init(Options{Level: "debug", File: path}))
	t.Cleanup(func() {
		Close()
		Logger = nil
	})

	Debug("loaded records", "count", 3)
	Warn("fallback anchor", "value", "crimson")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "loaded records")
	assert.Contains(t, string(raw), "count=3")
	assert.Contains(t, string(raw), "crimson")
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	Logger = nil
	assert.NotPanics(t, func() {
		Info("nothing")
		Error("nothing", "err", "x")
	})
	l := WithPrefix("server")
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("discarded") })
}

func TestInitReleasesPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casemap.log")
	require.NoError(t, Init(Options{File: path}))
	old := logFile
	require.NotNil(t, old)

	require.NoError(t, Init(Options{}))
	defer Close()
	assert.Nil(t, logFile)
	_, err := old.WriteString("late\n")
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestInitRejectsBadLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "loud"}))
}
