package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockType identifies a block texture in the palette. Zero means no block.
type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
)

// PaletteSize is the number of placeable block types (1..PaletteSize).
const PaletteSize = 32

// Valid reports whether b names a palette entry.
func (b BlockType) Valid() bool {
	return b >= 1 && b <= PaletteSize
}

// BlockPos is a position on the integer block lattice.
type BlockPos struct {
	X, Y, Z int
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Add returns p offset by o.
func (p BlockPos) Add(o BlockPos) BlockPos {
	return BlockPos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Vec3 returns the block centre in world space.
func (p BlockPos) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// NearestBlockPos rounds a world-space point to the closest lattice point.
func NearestBlockPos(v mgl32.Vec3) BlockPos {
	return BlockPos{
		X: int(math.Round(float64(v.X()))),
		Y: int(math.Round(float64(v.Y()))),
		Z: int(math.Round(float64(v.Z()))),
	}
}

// EntityID is the handle the render engine hands out for a cube entity.
type EntityID uint64

// View is the render-side mirror of the block store. Every store mutation made
// through World is reflected here, never the other way round.
type View interface {
	CreateCube(pos BlockPos, t BlockType, collider bool) EntityID
	DestroyEntity(id EntityID)
}

// Hit is what the render engine reports for a raycast: the entity that was
// hit, its stored position, and the outward normal of the face.
type Hit struct {
	Hit      bool
	Entity   EntityID
	Position BlockPos
	Normal   mgl32.Vec3
	Distance float32
}
