package world

import (
	"cmp"
	"slices"

	"turbocraft/internal/profiling"
)

// ChunkStreamer tracks which chunks have been generated and keeps a square
// window of chunks around the observer materialised.
type ChunkStreamer struct {
	world  *World
	loaded map[ChunkCoord]struct{}
}

// NewChunkStreamer creates a streamer generating into w.
func NewChunkStreamer(w *World) *ChunkStreamer {
	return &ChunkStreamer{
		world:  w,
		loaded: make(map[ChunkCoord]struct{}),
	}
}

// Prefill synchronously generates [-radius, radius]^2 around the origin.
func (cs *ChunkStreamer) Prefill(radius int) int {
	return cs.streamAround(ChunkCoord{}, radius)
}

// StreamChunksAround generates every missing chunk within radius of the chunk
// containing (x, z) and re-shows evicted ones. Returns the number of chunks
// generated.
func (cs *ChunkStreamer) StreamChunksAround(x, z float32, radius int) int {
	defer profiling.Track("world.StreamChunksAround")()
	return cs.streamAround(ChunkOf(x, z, cs.world.ChunkSize()), radius)
}

func (cs *ChunkStreamer) streamAround(center ChunkCoord, radius int) int {
	generated := 0
	ChunksInSquare(center, radius, func(coord ChunkCoord) {
		if _, ok := cs.loaded[coord]; ok {
			cs.world.ShowChunk(coord)
			return
		}
		cs.world.GenerateChunk(coord)
		// Marked only once every block of the chunk is in the store.
		cs.loaded[coord] = struct{}{}
		generated++
	})
	return generated
}

// EvictFarChunks hides the entities of loaded chunks outside the square of
// radius around (x, z). Block data stays in the store. Returns the number of
// chunks hidden by this call.
func (cs *ChunkStreamer) EvictFarChunks(x, z float32, radius int) int {
	defer profiling.Track("world.EvictFarChunks")()
	center := ChunkOf(x, z, cs.world.ChunkSize())
	evicted := 0
	for coord := range cs.loaded {
		if abs(coord.X-center.X) <= radius && abs(coord.Z-center.Z) <= radius {
			continue
		}
		if cs.world.IsHidden(coord) {
			continue
		}
		cs.world.HideChunk(coord)
		evicted++
	}
	return evicted
}

// IsLoaded reports whether coord has been generated this session.
func (cs *ChunkStreamer) IsLoaded(coord ChunkCoord) bool {
	_, ok := cs.loaded[coord]
	return ok
}

// LoadedCount returns the size of the loaded-chunk set.
func (cs *ChunkStreamer) LoadedCount() int {
	return len(cs.loaded)
}

// Loaded returns the loaded-chunk set sorted by x then z.
func (cs *ChunkStreamer) Loaded() []ChunkCoord {
	out := make([]ChunkCoord, 0, len(cs.loaded))
	for c := range cs.loaded {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b ChunkCoord) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return out
}

// Reset forgets every loaded chunk.
func (cs *ChunkStreamer) Reset() {
	clear(cs.loaded)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
