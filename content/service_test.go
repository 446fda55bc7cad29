package content

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "shot.wav", 64)
	writeBank(t, dir, "game.yaml", `
events:
  shot:
    file: shot.wav
`)

	s := NewService()
	require.NoError(t, s.Init(dir, "game"))
	require.NoError(t, s.Start())

	lib := s.Library()
	require.NotNil(t, lib)
	lib.WaitIdle()
	assert.NoError(t, lib.Err("game"))

	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}

func TestServiceInitValidation(t *testing.T) {
	assert.Error(t, NewService().Init())
	assert.Error(t, NewService().Init(1, "game"))
	assert.Error(t, NewService().Init("dir", 2))
	assert.Error(t, NewService().Start())
}

func TestServiceStartWithoutWatchableDir(t *testing.T) {
	// An unwatchable directory costs hot reload but never startup: the
	// service comes up, just without a watcher
	dir := filepath.Join(t.TempDir(), "missing")

	s := NewService()
	require.NoError(t, s.Init(dir, "game"))
	require.NoError(t, s.Start())
	assert.Nil(t, s.watcher)

	lib := s.Library()
	lib.WaitIdle()
	assert.Error(t, lib.Err("game"))

	require.NoError(t, s.Stop())
}
