package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, closer, err := New(path)
	require.NoError(t, err)

	log.Info().Str("event", "startup").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
	require.Contains(t, string(data), "startup")
}

func TestNewAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	for _, msg := range []string{"first", "second"} {
		log, closer, err := New(path)
		require.NoError(t, err)
		log.Info().Msg(msg)
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "first")
	require.Contains(t, string(data), "second")
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info().Msg("test message")

	require.NotEmpty(t, buf.String())
	require.True(t, strings.Contains(buf.String(), "test message"))
}

func TestNop(t *testing.T) {
	t.Parallel()
	require.Equal(t, zerolog.Disabled, Nop().GetLevel())
}
