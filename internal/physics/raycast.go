package physics

import (
	"math"

	"turbocraft/internal/profiling"
	"turbocraft/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 8.0
)

// Solid answers whether a lattice cell blocks rays.
type Solid interface {
	IsSolid(pos world.BlockPos) bool
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      world.BlockPos
	AdjacentPosition world.BlockPos
	Normal           mgl32.Vec3 // outward normal of the face that was hit
	Distance         float32
	Hit              bool
}

// Raycast walks the unit cells pierced by the ray (cells are centred on integer
// coordinates) and returns the first solid one at or beyond minDist.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, solid Solid) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	dir := direction.Normalize()

	// Shift so that cell n spans [n, n+1).
	p := start.Add(mgl32.Vec3{0.5, 0.5, 0.5})

	var cell, step, normal [3]int
	var tMax, tDelta [3]float32
	for i := range 3 {
		cell[i] = int(math.Floor(float64(p[i])))
		switch {
		case dir[i] > 0:
			step[i] = 1
			tMax[i] = (float32(cell[i]+1) - p[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tMax[i] = (p[i] - float32(cell[i])) / -dir[i]
			tDelta[i] = -1 / dir[i]
		default:
			tMax[i] = float32(math.Inf(1))
			tDelta[i] = float32(math.Inf(1))
		}
	}

	var t float32
	for t <= maxDist {
		pos := world.BlockPos{X: cell[0], Y: cell[1], Z: cell[2]}
		if t >= minDist && solid.IsSolid(pos) {
			n := world.BlockPos{X: normal[0], Y: normal[1], Z: normal[2]}
			return RaycastResult{
				HitPosition:      pos,
				AdjacentPosition: pos.Add(n),
				Normal:           n.Vec3(),
				Distance:         t,
				Hit:              true,
			}
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		normal = [3]int{}
		normal[axis] = -step[axis]
	}

	return RaycastResult{}
}
