package game

import (
	"context"
	"iter"

	"turbocraft/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Engine is the render engine as the session drives it.
type Engine interface {
	world.View
	ObserverPosition() mgl32.Vec3
	PlaceObserver(pos mgl32.Vec3)
	SetObserverEnabled(enabled bool)
	SetGravity(enabled bool)
	SetPointerLocked(locked bool)
	ShowPauseMenu(visible bool)
}

// Storage persists the world and inventory.
type Storage interface {
	SaveWorld(blocks iter.Seq2[world.BlockPos, world.BlockType]) error
	LoadWorld() (map[world.BlockPos]world.BlockType, error)
	SaveInventory(counts []int32) error
	LoadInventory(slots int) ([]int32, error)
}

// Chat is the multiplayer stub connection.
type Chat interface {
	Connect(ctx context.Context) error
	Close() error
}
