package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	day := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "marionette_2026-03-09.log", FileName(day))
}

func TestNew_WritesComponentLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Config{Dir: dir, Level: "info"})
	require.NoError(t, err)

	anim := l.Component("anim")
	anim.Info().Str("clip", "Wave").Msg("played")
	anim.Debug().Msg("hidden")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second close is a no-op")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"component":"anim"`)
	assert.Contains(t, out, `"clip":"Wave"`)
	assert.Contains(t, out, `"app":"marionette"`)
	assert.NotContains(t, out, "hidden")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Dir: t.TempDir(), Level: "debug", Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	cli := l.Component("cli")
	cli.Debug().Msg("matching")
	assert.Contains(t, buf.String(), "matching")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNop(t *testing.T) {
	l := Nop()
	x := l.Component("x")
	x.Error().Msg("dropped")
	assert.Empty(t, l.Path())
	assert.NoError(t, l.Close())
}
