package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"turbocraft/internal/config"
	"turbocraft/internal/inventory"
	"turbocraft/internal/metrics"
	"turbocraft/internal/physics"
	"turbocraft/internal/player"
	"turbocraft/internal/profiling"
	"turbocraft/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Options wires a Session to its collaborators. Chat and Metrics may be nil.
type Options struct {
	Config  *config.Config
	Engine  Engine
	Storage Storage
	Chat    Chat
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// Session owns the world aggregate for one play-through and runs the
// menu/running/paused state machine. It is not safe for concurrent use; all
// calls come from the update loop.
type Session struct {
	ID uuid.UUID

	cfg     *config.Config
	log     *slog.Logger
	engine  Engine
	storage Storage
	chat    Chat
	metrics *metrics.Metrics

	world     *world.World
	streamer  *world.ChunkStreamer
	inventory *inventory.Inventory

	mode          player.GameMode
	startMode     player.GameMode
	destroyPolicy DestroyPolicy
	evictDistance int
	state         State

	observerEnabled bool
	gravityOn       bool
	gravity         delayedAction
}

// NewSession builds a session in the Menu state.
func NewSession(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Engine == nil || opts.Storage == nil {
		return nil, errors.New("session needs an engine and a storage")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	mode, err := player.ParseGameMode(cfg.GameMode)
	if err != nil {
		return nil, err
	}
	policy, err := ParseDestroyPolicy(cfg.DestroyPolicy)
	if err != nil {
		return nil, err
	}

	// Eviction never reaches inside the render window.
	evict := cfg.EvictDistance
	if evict > 0 && evict < cfg.RenderDistance {
		evict = cfg.RenderDistance
	}

	gen := world.NewFlatGenerator(cfg.GroundY, world.BlockType(cfg.GroundBlock))
	w := world.New(opts.Engine, gen, cfg.ChunkSize)

	return &Session{
		cfg:           cfg,
		log:           log,
		engine:        opts.Engine,
		storage:       opts.Storage,
		chat:          opts.Chat,
		metrics:       opts.Metrics,
		world:         w,
		streamer:      world.NewChunkStreamer(w),
		inventory:     inventory.New(int32(cfg.InventoryStart)),
		mode:          mode,
		startMode:     mode,
		destroyPolicy: policy,
		evictDistance: evict,
		state:         StateMenu,
	}, nil
}

func (s *Session) State() State                    { return s.state }
func (s *Session) Mode() player.GameMode           { return s.mode }
func (s *Session) World() *world.World             { return s.world }
func (s *Session) Streamer() *world.ChunkStreamer  { return s.streamer }
func (s *Session) Inventory() *inventory.Inventory { return s.inventory }

// GravityPending reports whether the spawn sequence is still waiting to turn
// gravity on.
func (s *Session) GravityPending() bool { return s.gravity.Pending() }

// Start moves Menu to Running: it loads saved state, prefills the spawn area,
// spawns the observer with gravity off and schedules gravity for later.
// Unreadable save files do not stop the start; their errors are returned
// once the session is running.
func (s *Session) Start(now time.Time) error {
	if s.state != StateMenu {
		return fmt.Errorf("cannot start from %s", s.state)
	}
	s.ID = uuid.New()
	s.mode = s.startMode
	s.inventory = inventory.New(int32(s.cfg.InventoryStart))

	loadErr := errors.Join(s.LoadWorld(), s.LoadInventory())

	generated := s.streamer.Prefill(s.cfg.RenderDistance)
	s.metrics.ChunksGenerated(generated)

	spawn := s.spawnPoint()
	s.engine.PlaceObserver(spawn)
	s.engine.SetGravity(false)
	s.gravityOn = false
	s.setObserverEnabled(true)
	s.engine.SetPointerLocked(true)
	s.engine.ShowPauseMenu(false)
	s.gravity.Schedule(now, s.cfg.GravityDelay)

	s.state = StateRunning
	s.metrics.WorldSize(s.streamer.LoadedCount(), s.world.Len())
	s.log.Info("session started",
		"session", s.ID,
		"mode", s.mode,
		"prefilled_chunks", generated,
		"blocks", s.world.Len(),
		"spawn", spawn,
	)
	return loadErr
}

// spawnPoint is spawn_height above the highest block at the origin column.
func (s *Session) spawnPoint() mgl32.Vec3 {
	top := float32(s.cfg.GroundY) + 0.5
	if y, ok := physics.FindGroundLevel(0, 0, float32(s.cfg.GroundY+256), s.cfg.GroundY-64, s.world.Store()); ok {
		top = y
	}
	return mgl32.Vec3{0, top + s.cfg.SpawnHeight, 0}
}

func (s *Session) setObserverEnabled(enabled bool) {
	s.observerEnabled = enabled
	s.engine.SetObserverEnabled(enabled)
}

// Tick runs once per update: it completes the spawn sequence when due and
// streams chunks around the observer while running. Returns the number of
// chunks generated.
func (s *Session) Tick(now time.Time) int {
	if s.state == StateMenu {
		return 0
	}
	profiling.ResetTick()
	start := time.Now()

	if s.gravity.Fire(now) {
		s.gravityOn = true
		if s.state == StateRunning {
			s.engine.SetGravity(true)
		}
		s.log.Debug("spawn complete, gravity on", "session", s.ID)
	}

	generated := 0
	if s.state == StateRunning && s.observerEnabled {
		pos := s.engine.ObserverPosition()
		generated = s.streamer.StreamChunksAround(pos.X(), pos.Z(), s.cfg.RenderDistance)
		s.metrics.ChunksGenerated(generated)
		if s.evictDistance > 0 {
			s.metrics.ChunksEvicted(s.streamer.EvictFarChunks(pos.X(), pos.Z(), s.evictDistance))
		}
	}
	s.metrics.WorldSize(s.streamer.LoadedCount(), s.world.Len())

	// Check if tick took too long
	if d := time.Since(start); s.cfg.TickRate > 0 && d > s.cfg.TickInterval() {
		s.metrics.SlowTick()
		s.log.Warn("slow tick", "duration", d, "top", profiling.TopN(5))
	}
	return generated
}

func (s *Session) pause() {
	s.state = StatePaused
	s.setObserverEnabled(false)
	s.engine.SetGravity(false)
	s.engine.SetPointerLocked(false)
	s.engine.ShowPauseMenu(true)
}

func (s *Session) resume() {
	s.state = StateRunning
	s.engine.ShowPauseMenu(false)
	s.setObserverEnabled(true)
	s.engine.SetGravity(s.gravityOn)
	s.engine.SetPointerLocked(true)
}

// End tears the world down and returns to the menu. A pending gravity
// enable is cancelled.
func (s *Session) End() {
	if s.state == StateMenu {
		return
	}
	s.gravity.Cancel()
	s.gravityOn = false
	if s.chat != nil {
		if err := s.chat.Close(); err != nil {
			s.log.Debug("closing chat", "err", err)
		}
	}
	s.setObserverEnabled(false)
	s.engine.SetGravity(false)
	s.engine.SetPointerLocked(false)
	s.engine.ShowPauseMenu(false)
	s.world.Reset()
	s.streamer.Reset()
	s.state = StateMenu
	s.metrics.WorldSize(0, 0)
	s.log.Info("session ended", "session", s.ID)
}

// SaveWorld writes the whole block store.
func (s *Session) SaveWorld() error {
	start := time.Now()
	if err := s.storage.SaveWorld(s.world.Store().All()); err != nil {
		s.log.Error("saving world failed", "err", err)
		return err
	}
	s.metrics.SaveDuration("world", time.Since(start))
	return nil
}

// LoadWorld applies the saved world over the current store. A missing file
// is not an error; a corrupt one leaves the store untouched.
func (s *Session) LoadWorld() error {
	blocks, err := s.storage.LoadWorld()
	if err != nil {
		s.metrics.LoadError("world")
		s.log.Warn("world save unreadable, keeping current world", "err", err)
		return err
	}
	if blocks == nil {
		return nil
	}
	changed := s.world.Load(blocks)
	s.log.Info("world loaded", "blocks", len(blocks), "changed", changed)
	return nil
}

// SaveInventory writes the slot counts.
func (s *Session) SaveInventory() error {
	start := time.Now()
	if err := s.storage.SaveInventory(s.inventory.Counts()); err != nil {
		s.log.Error("saving inventory failed", "err", err)
		return err
	}
	s.metrics.SaveDuration("inventory", time.Since(start))
	return nil
}

// LoadInventory restores the slot counts. A missing or corrupt file keeps the
// in-memory inventory.
func (s *Session) LoadInventory() error {
	counts, err := s.storage.LoadInventory(inventory.Size)
	if err != nil {
		s.metrics.LoadError("inventory")
		s.log.Warn("inventory save unreadable, keeping current inventory", "err", err)
		return err
	}
	if counts == nil {
		return nil
	}
	return s.inventory.Restore(counts)
}

// SaveAll writes both files if a world is live. Used on shutdown.
func (s *Session) SaveAll() error {
	if s.state == StateMenu {
		return nil
	}
	return errors.Join(s.SaveWorld(), s.SaveInventory())
}

func (s *Session) connect() {
	if s.chat == nil {
		return
	}
	ctx := context.Background()
	if s.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DialTimeout)
		defer cancel()
	}
	if err := s.chat.Connect(ctx); err != nil {
		s.log.Warn("Connection failed", "err", err)
	}
}
