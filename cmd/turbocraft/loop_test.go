package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"turbocraft/internal/config"
	"turbocraft/internal/game"
	"turbocraft/internal/input"
	"turbocraft/internal/persistence"
	"turbocraft/internal/registry"
	"turbocraft/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) (*loop, *bytes.Buffer) {
	t.Helper()
	registry.InitRegistry()
	cfg := config.Default()
	cfg.RenderDistance = 1
	cfg.GravityDelay = time.Hour
	cfg.CompressSaves = false

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := persistence.New(t.TempDir(), persistence.Options{
		WorldFile:     cfg.WorldFile,
		InventoryFile: cfg.InventoryFile,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	engine := render.NewHeadless(log, -64)
	s, err := game.NewSession(game.Options{Config: cfg, Engine: engine, Storage: storage, Log: log})
	require.NoError(t, err)

	var out bytes.Buffer
	return newLoop(cfg, s, engine, input.NewInputManager(), &out, log), &out
}

func TestConsolePlaceAndDestroy(t *testing.T) {
	l, out := newTestLoop(t)

	for _, cmd := range []string{"start", "look 0 -89", "key 3", "click right"} {
		require.False(t, l.exec(cmd), cmd)
	}
	assert.Contains(t, out.String(), "secondary: placed (0,1,0)")
	assert.Equal(t, 577, l.session.World().Len())

	require.False(t, l.exec("click left"))
	assert.Contains(t, out.String(), "primary: destroyed (0,1,0)")
	assert.Equal(t, 576, l.session.World().Len())

	out.Reset()
	l.exec("stats")
	assert.Contains(t, out.String(), "state=running mode=creative slot=3 block=stone texture=assets/block_3.png count=10")
	assert.Contains(t, out.String(), "blocks=576 chunks=9")
}

func TestConsoleBlocksListing(t *testing.T) {
	l, out := newTestLoop(t)

	require.False(t, l.exec("start"))
	require.False(t, l.exec("key 2"))
	out.Reset()
	require.False(t, l.exec("blocks"))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 32)
	assert.Equal(t, "  1 grass          assets/block_1.png     10", lines[0])
	assert.Equal(t, "* 2 dirt           assets/block_2.png     10", lines[1])
	assert.Contains(t, lines[31], "block_32")
}

func TestConsolePauseAndQuit(t *testing.T) {
	l, _ := newTestLoop(t)

	assert.False(t, l.exec("start"))
	assert.False(t, l.exec("key escape"))
	assert.Equal(t, game.StatePaused, l.session.State())
	assert.True(t, l.exec("key q"))
	assert.True(t, l.exec("quit"))
}

func TestConsoleUsageErrors(t *testing.T) {
	l, out := newTestLoop(t)

	for _, cmd := range []string{"", "key", "key z", "click middle", "look 1", "move a b c", "tick -1", "dance"} {
		assert.False(t, l.exec(cmd), cmd)
	}
	assert.Contains(t, out.String(), `key "z" is not bound`)
	assert.Contains(t, out.String(), "usage: look <yaw> <pitch>")
	assert.Contains(t, out.String(), `unknown command "dance"`)
	assert.Equal(t, game.StateMenu, l.session.State())
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	l, out := newTestLoop(t)

	done := make(chan error, 1)
	go func() {
		done <- l.run(context.Background(), strings.NewReader("start\ntick 3\nstats\n"))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return at end of input")
	}
	assert.Contains(t, out.String(), "state=running")
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _ := newTestLoop(t)
	ctx, cancel := context.WithCancel(context.Background())

	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() { done <- l.run(ctx, pr) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run ignored cancellation")
	}
}
