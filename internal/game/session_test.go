package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"turbocraft/internal/config"
	"turbocraft/internal/input"
	"turbocraft/internal/persistence"
	"turbocraft/internal/render"
	"turbocraft/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	connects int
	closes   int
	err      error
}

func (f *fakeChat) Connect(ctx context.Context) error {
	f.connects++
	return f.err
}

func (f *fakeChat) Close() error {
	f.closes++
	return nil
}

type fixture struct {
	s       *Session
	engine  *render.Headless
	storage *persistence.Storage
	chat    *fakeChat
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RenderDistance = 1
	cfg.CompressSaves = false
	return cfg
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := render.NewHeadless(log, -16)
	storage, err := persistence.New(t.TempDir(), persistence.Options{
		WorldFile:     cfg.WorldFile,
		InventoryFile: cfg.InventoryFile,
		Compress:      cfg.CompressSaves,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	chat := &fakeChat{}
	s, err := NewSession(Options{Config: cfg, Engine: engine, Storage: storage, Chat: chat, Log: log})
	require.NoError(t, err)
	return &fixture{s: s, engine: engine, storage: storage, chat: chat}
}

// running puts the session straight into Running over an empty world.
func (f *fixture) running() *fixture {
	f.s.state = StateRunning
	f.s.setObserverEnabled(true)
	return f
}

func hitAt(pos world.BlockPos, normal mgl32.Vec3) world.Hit {
	return world.Hit{Hit: true, Position: pos, Normal: normal}
}

var up = mgl32.Vec3{0, 1, 0}

func TestEditScenario(t *testing.T) {
	f := newFixture(t, testConfig()).running()
	s := f.s
	now := time.Now()

	d := s.Handle(Event{Action: input.ActionHotbar3}, now)
	assert.Equal(t, 2, d.Slot)

	d = s.Handle(Event{Action: input.ActionSecondary, Hit: hitAt(world.BlockPos{}, up)}, now)
	assert.Equal(t, EditPlaced, d.Edit)
	assert.Equal(t, world.BlockPos{X: 0, Y: 1, Z: 0}, d.Target)
	assert.Equal(t, 1, s.World().Len())
	got, ok := s.World().Get(world.BlockPos{Y: 1})
	require.True(t, ok)
	assert.Equal(t, world.BlockType(3), got)
	assert.Equal(t, 1, f.engine.EntityCount())

	d = s.Handle(Event{Action: input.ActionPrimary, Hit: hitAt(world.BlockPos{Y: 1}, up)}, now)
	assert.Equal(t, EditDestroyed, d.Edit)
	assert.Equal(t, 0, s.World().Len())
	assert.Equal(t, 0, f.engine.EntityCount())
}

func TestPlaceRejections(t *testing.T) {
	f := newFixture(t, testConfig()).running()
	s := f.s
	now := time.Now()

	d := s.Handle(Event{Action: input.ActionSecondary}, now)
	assert.Equal(t, EditNoTarget, d.Edit)

	require.True(t, s.World().Place(world.BlockPos{Y: 1}, 1))
	d = s.Handle(Event{Action: input.ActionSecondary, Hit: hitAt(world.BlockPos{}, up)}, now)
	assert.Equal(t, EditOccupied, d.Edit)
	assert.Equal(t, 1, s.World().Len())

	d = s.Handle(Event{Action: input.ActionPrimary, Hit: hitAt(world.BlockPos{X: 9}, up)}, now)
	assert.Equal(t, EditEmpty, d.Edit)
}

func TestPlaceRoundsToNearestLattice(t *testing.T) {
	f := newFixture(t, testConfig()).running()
	hit := world.Hit{Hit: true, Position: world.BlockPos{X: 2, Y: 0, Z: -1}, Normal: mgl32.Vec3{0.9999, 0.0001, 0}}
	d := f.s.Handle(Event{Action: input.ActionSecondary, Hit: hit}, time.Now())
	assert.Equal(t, EditPlaced, d.Edit)
	assert.Equal(t, world.BlockPos{X: 3, Y: 0, Z: -1}, d.Target)
}

func TestResourceLimitedPlacement(t *testing.T) {
	cfg := testConfig()
	cfg.GameMode = "survival"
	cfg.InventoryStart = 3
	f := newFixture(t, cfg).running()
	s := f.s
	now := time.Now()

	s.Handle(Event{Action: input.ActionHotbar5}, now)
	slot := s.Inventory().CurrentItem
	c := int(s.Inventory().Count(slot))

	placed := 0
	var last EditResult
	for i := range c + 1 {
		d := s.Handle(Event{Action: input.ActionSecondary, Hit: hitAt(world.BlockPos{X: i * 2}, up)}, now)
		if d.Edit == EditPlaced {
			placed++
		}
		last = d.Edit
	}
	assert.Equal(t, c, placed)
	assert.Equal(t, EditOutOfStock, last)
	assert.Equal(t, int32(0), s.Inventory().Count(slot))
	assert.Equal(t, c, s.World().Len())
}

func TestCreativePlacementIsUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.InventoryStart = 0
	f := newFixture(t, cfg).running()

	for i := range 5 {
		d := f.s.Handle(Event{Action: input.ActionSecondary, Hit: hitAt(world.BlockPos{X: i * 2}, up)}, time.Now())
		assert.Equal(t, EditPlaced, d.Edit)
	}
	assert.Equal(t, int32(0), f.s.Inventory().Count(0))
}

func TestDestroyPolicy(t *testing.T) {
	for _, tc := range []struct {
		policy string
		want   EditResult
	}{
		{"creative-only", EditNotAllowed},
		{"always", EditDestroyed},
	} {
		cfg := testConfig()
		cfg.GameMode = "survival"
		cfg.DestroyPolicy = tc.policy
		f := newFixture(t, cfg).running()
		require.True(t, f.s.World().Place(world.BlockPos{}, 1))

		d := f.s.Handle(Event{Action: input.ActionPrimary, Hit: hitAt(world.BlockPos{}, up)}, time.Now())
		assert.Equal(t, tc.want, d.Edit, tc.policy)
	}
}

func TestToggleModeAndSlots(t *testing.T) {
	f := newFixture(t, testConfig()).running()
	s := f.s
	now := time.Now()

	d := s.Handle(Event{Action: input.ActionToggleMode}, now)
	assert.Equal(t, "survival", d.Mode.String())
	d = s.Handle(Event{Action: input.ActionToggleMode}, now)
	assert.Equal(t, "creative", d.Mode.String())

	d = s.Handle(Event{Action: input.ActionScrollUp}, now)
	assert.Equal(t, 31, d.Slot)
	d = s.Handle(Event{Action: input.ActionScrollDown}, now)
	assert.Equal(t, 0, d.Slot)
}

func TestStartPrefillsAndSpawns(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	now := time.Now()

	d := s.Handle(Event{Action: input.ActionStart}, now)
	require.NoError(t, d.Err)
	assert.Equal(t, StateRunning, d.State)
	assert.Equal(t, 9, s.Streamer().LoadedCount())
	assert.Equal(t, 576, s.World().Len())
	assert.Equal(t, 576, f.engine.EntityCount())

	assert.Equal(t, mgl32.Vec3{0, 3.5, 0}, f.engine.ObserverPosition())
	assert.True(t, f.engine.ObserverEnabled())
	assert.True(t, f.engine.PointerLocked())
	assert.False(t, f.engine.Observer().Gravity)
	assert.True(t, s.GravityPending())

	assert.Error(t, s.Start(now), "start only from the menu")
}

func TestGravityEnabledAfterDelay(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	now := time.Now()
	require.NoError(t, s.Start(now))

	s.Tick(now.Add(100 * time.Millisecond))
	assert.False(t, f.engine.Observer().Gravity)

	s.Tick(now.Add(s.cfg.GravityDelay))
	assert.True(t, f.engine.Observer().Gravity)
	assert.False(t, s.GravityPending())

	for range 20 {
		f.engine.Step()
	}
	assert.Equal(t, float32(0.5), f.engine.ObserverPosition().Y())
}

func TestEndCancelsPendingGravity(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	now := time.Now()
	require.NoError(t, s.Start(now))

	s.End()
	assert.False(t, s.GravityPending())
	assert.Equal(t, StateMenu, s.State())
	s.Tick(now.Add(time.Hour))
	assert.False(t, f.engine.Observer().Gravity)
	assert.Equal(t, 0, f.engine.EntityCount())
	assert.Equal(t, 1, f.chat.closes)
}

func TestPauseResumeQuit(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	now := time.Now()
	require.NoError(t, s.Start(now))
	s.Tick(now.Add(time.Second))

	d := s.Handle(Event{Action: input.ActionPause}, now)
	assert.Equal(t, StatePaused, d.State)
	assert.True(t, f.engine.PauseMenuVisible())
	assert.False(t, f.engine.PointerLocked())
	assert.False(t, f.engine.ObserverEnabled())
	assert.False(t, f.engine.Observer().Gravity)

	// Input other than resume/quit is ignored while paused.
	before := s.World().Len()
	d = s.Handle(Event{Action: input.ActionPrimary, Hit: hitAt(world.BlockPos{}, up)}, now)
	assert.Equal(t, EditNone, d.Edit)
	assert.Equal(t, before, s.World().Len())
	assert.Equal(t, 0, s.Tick(now.Add(2*time.Second)))

	d = s.Handle(Event{Action: input.ActionPause}, now)
	assert.Equal(t, StateRunning, d.State)
	assert.True(t, f.engine.ObserverEnabled())
	assert.True(t, f.engine.Observer().Gravity, "gravity comes back once spawn finished")
	assert.False(t, f.engine.PauseMenuVisible())

	s.Handle(Event{Action: input.ActionPause}, now)
	d = s.Handle(Event{Action: input.ActionQuit}, now)
	assert.True(t, d.Quit)

	d = s.Handle(Event{Action: input.ActionQuitToMenu}, now)
	assert.Equal(t, StateMenu, d.State)
	assert.Equal(t, 0, s.World().Len())
	assert.Equal(t, 0, s.Streamer().LoadedCount())
}

func TestTickStreamsAroundObserver(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	now := time.Now()
	require.NoError(t, s.Start(now))

	f.engine.Move(mgl32.Vec3{8.5, 0, 0})
	assert.Equal(t, 3, s.Tick(now))
	assert.Equal(t, 12, s.Streamer().LoadedCount())
	assert.Equal(t, 0, s.Tick(now))
}

func TestTickEvictsFarChunks(t *testing.T) {
	cfg := testConfig()
	cfg.EvictDistance = 1
	f := newFixture(t, cfg)
	s := f.s
	require.NoError(t, s.Start(time.Now()))

	f.engine.Move(mgl32.Vec3{80, 0, 0})
	s.Tick(time.Now())
	assert.Equal(t, 18, s.Streamer().LoadedCount())
	assert.Equal(t, 9*64, f.engine.EntityCount())
	assert.Equal(t, 18*64, s.World().Len())
}

func TestEvictDistanceNeverInsideRenderWindow(t *testing.T) {
	cfg := testConfig()
	cfg.RenderDistance = 2
	cfg.EvictDistance = 1
	f := newFixture(t, cfg)
	s := f.s
	require.NoError(t, s.Start(time.Now()))

	for range 3 {
		s.Tick(time.Now())
		for _, coord := range s.Streamer().Loaded() {
			assert.False(t, s.World().IsHidden(coord), "%v", coord)
		}
	}
	assert.Equal(t, 25*64, f.engine.EntityCount())
}

func TestSaveAndReloadAcrossSessions(t *testing.T) {
	cfg := testConfig()
	cfg.GameMode = "survival"
	f := newFixture(t, cfg)
	s := f.s
	now := time.Now()
	require.NoError(t, s.Start(now))

	s.Handle(Event{Action: input.ActionHotbar4}, now)
	d := s.Handle(Event{Action: input.ActionSecondary, Hit: hitAt(world.BlockPos{}, up)}, now)
	require.Equal(t, EditPlaced, d.Edit)
	require.NoError(t, s.Handle(Event{Action: input.ActionSaveWorld}, now).Err)
	require.NoError(t, s.Handle(Event{Action: input.ActionSaveInventory}, now).Err)

	s.Handle(Event{Action: input.ActionPause}, now)
	s.Handle(Event{Action: input.ActionQuitToMenu}, now)
	require.Equal(t, 0, s.World().Len())

	require.NoError(t, s.Start(now))
	got, ok := s.World().Get(world.BlockPos{Y: 1})
	require.True(t, ok)
	assert.Equal(t, world.BlockType(4), got)
	assert.Equal(t, 577, s.World().Len())
	assert.Equal(t, int32(9), s.Inventory().Count(3))
	assert.Equal(t, mgl32.Vec3{0, 4.5, 0}, f.engine.ObserverPosition(), "spawn sits above the placed block")
}

func TestCorruptWorldFallsBack(t *testing.T) {
	f := newFixture(t, testConfig())
	s := f.s
	require.NoError(t, os.WriteFile(f.storage.WorldPath(), []byte("TCW\x01garbage"), 0o644))
	require.NoError(t, os.WriteFile(f.storage.InventoryPath(), []byte("nope"), 0o644))

	now := time.Now()
	d := s.Handle(Event{Action: input.ActionStart}, now)
	assert.ErrorIs(t, d.Err, persistence.ErrCorruptSaveData)
	assert.Equal(t, StateRunning, d.State, "a bad save does not block the start")
	assert.Equal(t, 576, s.World().Len())
	assert.Equal(t, int32(10), s.Inventory().Count(0))

	d = s.Handle(Event{Action: input.ActionLoadWorld}, now)
	assert.True(t, errors.Is(d.Err, persistence.ErrCorruptSaveData))
	assert.Equal(t, StateRunning, d.State)
	assert.Equal(t, 576, s.World().Len())
}

func TestConnectFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, testConfig()).running()
	f.chat.err = errors.New("refused")

	d := f.s.Handle(Event{Action: input.ActionConnect}, time.Now())
	assert.NoError(t, d.Err)
	assert.Equal(t, 1, f.chat.connects)
	assert.Equal(t, StateRunning, d.State)
}

func TestSaveAllSkipsMenu(t *testing.T) {
	f := newFixture(t, testConfig())
	require.NoError(t, f.s.SaveAll())
	_, err := os.Stat(f.storage.WorldPath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, f.s.Start(time.Now()))
	require.NoError(t, f.s.SaveAll())
	_, err = os.Stat(f.storage.WorldPath())
	assert.NoError(t, err)
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := render.NewHeadless(log, 0)

	_, err := NewSession(Options{Engine: engine, Log: log})
	assert.Error(t, err)

	storage, err := persistence.New(t.TempDir(), persistence.Options{WorldFile: "w", InventoryFile: "i"}, log)
	require.NoError(t, err)
	defer storage.Close()

	cfg := testConfig()
	cfg.DestroyPolicy = "sometimes"
	_, err = NewSession(Options{Config: cfg, Engine: engine, Storage: storage, Log: log})
	assert.Error(t, err)
}
