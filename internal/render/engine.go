// Package render holds the headless stand-in for the 3D engine: it owns the
// cube entities and the observer, and answers raycasts against colliders.
package render

import (
	"log/slog"

	"turbocraft/internal/physics"
	"turbocraft/internal/player"
	"turbocraft/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube is one rendered block entity.
type Cube struct {
	Pos      world.BlockPos
	Type     world.BlockType
	Collider bool
}

// Headless implements world.View without drawing anything.
type Headless struct {
	log *slog.Logger

	nextID    world.EntityID
	cubes     map[world.EntityID]Cube
	colliders map[world.BlockPos]world.EntityID

	observer      *player.Observer
	pointerLocked bool
	pauseMenu     bool
	floorY        int
}

// NewHeadless returns an engine with no entities and a disabled observer at
// the origin. floorY bounds ground searches.
func NewHeadless(log *slog.Logger, floorY int) *Headless {
	if log == nil {
		log = slog.Default()
	}
	return &Headless{
		log:       log,
		cubes:     make(map[world.EntityID]Cube),
		colliders: make(map[world.BlockPos]world.EntityID),
		observer:  player.New(mgl32.Vec3{}),
		floorY:    floorY,
	}
}

// CreateCube adds an entity and returns its handle.
func (h *Headless) CreateCube(pos world.BlockPos, t world.BlockType, collider bool) world.EntityID {
	h.nextID++
	id := h.nextID
	h.cubes[id] = Cube{Pos: pos, Type: t, Collider: collider}
	if collider {
		h.colliders[pos] = id
	}
	return id
}

// DestroyEntity removes an entity. Unknown handles are ignored.
func (h *Headless) DestroyEntity(id world.EntityID) {
	c, ok := h.cubes[id]
	if !ok {
		return
	}
	delete(h.cubes, id)
	if h.colliders[c.Pos] == id {
		delete(h.colliders, c.Pos)
	}
}

// Cube returns the entity behind id.
func (h *Headless) Cube(id world.EntityID) (Cube, bool) {
	c, ok := h.cubes[id]
	return c, ok
}

func (h *Headless) EntityCount() int { return len(h.cubes) }

// IsSolid reports whether a collider entity occupies pos.
func (h *Headless) IsSolid(pos world.BlockPos) bool {
	_, ok := h.colliders[pos]
	return ok
}

// Raycast casts from the observer's eye along its view direction.
func (h *Headless) Raycast(maxDist float32) world.Hit {
	return h.RaycastFrom(h.observer.GetEyePosition(), h.observer.GetFrontVector(), maxDist)
}

// RaycastFrom casts an arbitrary ray against collider entities.
func (h *Headless) RaycastFrom(origin, dir mgl32.Vec3, maxDist float32) world.Hit {
	r := physics.Raycast(origin, dir, physics.MinReachDistance, maxDist, h)
	if !r.Hit {
		return world.Hit{}
	}
	return world.Hit{
		Hit:      true,
		Entity:   h.colliders[r.HitPosition],
		Position: r.HitPosition,
		Normal:   r.Normal,
		Distance: r.Distance,
	}
}

// Observer exposes the observer for direct manipulation by drivers.
func (h *Headless) Observer() *player.Observer { return h.observer }

func (h *Headless) ObserverPosition() mgl32.Vec3 { return h.observer.Position }

func (h *Headless) ObserverEnabled() bool { return h.observer.Enabled }

func (h *Headless) PlaceObserver(pos mgl32.Vec3) {
	h.observer.Position = pos
	h.observer.OnGround = false
	h.log.Debug("observer placed", "pos", pos)
}

func (h *Headless) SetObserverEnabled(enabled bool) { h.observer.Enabled = enabled }

func (h *Headless) SetGravity(enabled bool) {
	h.observer.Gravity = enabled
	h.log.Debug("gravity", "enabled", enabled)
}

func (h *Headless) SetPointerLocked(locked bool) { h.pointerLocked = locked }

func (h *Headless) PointerLocked() bool { return h.pointerLocked }

func (h *Headless) ShowPauseMenu(visible bool) { h.pauseMenu = visible }

func (h *Headless) PauseMenuVisible() bool { return h.pauseMenu }

// Move translates the observer when it accepts input.
func (h *Headless) Move(delta mgl32.Vec3) {
	if !h.observer.Enabled {
		return
	}
	h.observer.Position = h.observer.Position.Add(delta)
	h.observer.OnGround = false
}

// Look turns the observer when it accepts input.
func (h *Headless) Look(dyaw, dpitch float64) {
	if !h.observer.Enabled {
		return
	}
	h.observer.Look(dyaw, dpitch)
}

// Step advances engine-side physics by one tick.
func (h *Headless) Step() {
	o := h.observer
	if !o.Gravity || !o.Enabled || o.OnGround {
		return
	}
	ground, ok := physics.FindGroundLevel(o.Position.X(), o.Position.Z(), o.Position.Y(), h.floorY, h)
	o.Fall(ground, ok)
}
