package world

import "math"

// DefaultChunkSize is the edge length of a chunk in blocks.
const DefaultChunkSize = 8

// ChunkCoord addresses a chunk column. The world is only chunked along x/z.
type ChunkCoord struct {
	X, Z int
}

// Origin returns the world-space block x/z of the chunk's minimum corner.
func (c ChunkCoord) Origin(size int) (int, int) {
	return c.X * size, c.Z * size
}

// ChunkOf returns the chunk holding the continuous position (x, z).
func ChunkOf(x, z float32, size int) ChunkCoord {
	return ChunkCoord{
		X: int(math.Floor(float64(x) / float64(size))),
		Z: int(math.Floor(float64(z) / float64(size))),
	}
}

// ChunkOfBlock returns the chunk whose footprint contains pos.
func ChunkOfBlock(pos BlockPos, size int) ChunkCoord {
	return ChunkCoord{X: floorDiv(pos.X, size), Z: floorDiv(pos.Z, size)}
}

// ChunksInSquare iterates every coordinate in [c-r, c+r] x [c-r, c+r].
func ChunksInSquare(center ChunkCoord, radius int, fn func(ChunkCoord)) {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			fn(ChunkCoord{X: center.X + dx, Z: center.Z + dz})
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
