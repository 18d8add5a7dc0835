package physics

import (
	"math"

	"turbocraft/internal/world"
)

// FindGroundLevel returns the top face height of the highest solid block in
// the column at (x, z), scanning down from fromY to floorY. ok is false when
// the column is empty.
func FindGroundLevel(x, z, fromY float32, floorY int, solid Solid) (float32, bool) {
	bx := int(math.Round(float64(x)))
	bz := int(math.Round(float64(z)))
	for by := int(math.Floor(float64(fromY) + 0.5)); by >= floorY; by-- {
		if solid.IsSolid(world.BlockPos{X: bx, Y: by, Z: bz}) {
			return float32(by) + 0.5, true
		}
	}
	return 0, false
}

