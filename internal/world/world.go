package world

import (
	"turbocraft/internal/profiling"
)

// World owns the block store and keeps the render view in lockstep with it.
// Every mutation goes through World so that each stored block has exactly one
// visual entity (unless its chunk is hidden by eviction).
type World struct {
	store *BlockStore
	view  View
	gen   TerrainGenerator
	size  int

	entities map[BlockPos]EntityID
	hidden   map[ChunkCoord]struct{}
}

// New creates an empty world mirrored into view.
func New(view View, gen TerrainGenerator, chunkSize int) *World {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &World{
		store:    NewBlockStore(chunkSize),
		view:     view,
		gen:      gen,
		size:     chunkSize,
		entities: make(map[BlockPos]EntityID),
		hidden:   make(map[ChunkCoord]struct{}),
	}
}

// ChunkSize returns the chunk edge length in blocks.
func (w *World) ChunkSize() int { return w.size }

// Store exposes the block store for read-only bulk access (saving, raycasts).
func (w *World) Store() *BlockStore { return w.store }

// Get returns the block at pos.
func (w *World) Get(pos BlockPos) (BlockType, bool) { return w.store.Get(pos) }

// Len returns the number of stored blocks.
func (w *World) Len() int { return w.store.Len() }

// EntityCount returns the number of live render entities owned by the world.
func (w *World) EntityCount() int { return len(w.entities) }

// GenerateChunk populates coord, inserting only positions not yet stored.
// Calling it again for the same chunk is a no-op. Returns the number of
// blocks inserted.
func (w *World) GenerateChunk(coord ChunkCoord) int {
	defer profiling.Track("world.GenerateChunk")()
	inserted := 0
	w.gen.PopulateChunk(coord, w.size, func(pos BlockPos, t BlockType) {
		if w.store.Has(pos) {
			return
		}
		w.store.Set(pos, t)
		w.materialise(pos, t)
		inserted++
	})
	return inserted
}

// Place inserts t at an empty position. It returns false if pos is occupied or
// t is not a palette type.
func (w *World) Place(pos BlockPos, t BlockType) bool {
	if !t.Valid() || w.store.Has(pos) {
		return false
	}
	w.store.Set(pos, t)
	w.materialise(pos, t)
	return true
}

// Remove deletes the block at pos and its entity. Returns false if empty.
func (w *World) Remove(pos BlockPos) bool {
	if _, ok := w.store.Remove(pos); !ok {
		return false
	}
	w.dematerialise(pos)
	return true
}

// Load applies blocks with overwrite semantics. Entities are recreated only
// for positions whose type changed. Returns the number of positions touched.
func (w *World) Load(blocks map[BlockPos]BlockType) int {
	defer profiling.Track("world.Load")()
	changed := 0
	for pos, t := range blocks {
		if !t.Valid() {
			continue
		}
		if old, ok := w.store.Get(pos); ok {
			if old == t {
				continue
			}
			w.dematerialise(pos)
		}
		w.store.Set(pos, t)
		w.materialise(pos, t)
		changed++
	}
	return changed
}

// Reset clears the store and destroys every entity.
func (w *World) Reset() {
	for pos := range w.entities {
		w.dematerialise(pos)
	}
	w.store.Clear()
	clear(w.hidden)
}

// HideChunk destroys the entities of coord while keeping its blocks stored.
// Returns the number of entities destroyed.
func (w *World) HideChunk(coord ChunkCoord) int {
	if _, ok := w.hidden[coord]; ok {
		return 0
	}
	n := 0
	for pos := range w.store.InChunk(coord) {
		if _, ok := w.entities[pos]; ok {
			w.dematerialise(pos)
			n++
		}
	}
	w.hidden[coord] = struct{}{}
	return n
}

// ShowChunk recreates the entities of a hidden chunk.
func (w *World) ShowChunk(coord ChunkCoord) int {
	if _, ok := w.hidden[coord]; !ok {
		return 0
	}
	delete(w.hidden, coord)
	n := 0
	for pos, t := range w.store.InChunk(coord) {
		w.materialise(pos, t)
		n++
	}
	return n
}

// IsHidden reports whether coord's entities are currently evicted.
func (w *World) IsHidden(coord ChunkCoord) bool {
	_, ok := w.hidden[coord]
	return ok
}

func (w *World) materialise(pos BlockPos, t BlockType) {
	if _, ok := w.hidden[ChunkOfBlock(pos, w.size)]; ok {
		return
	}
	w.entities[pos] = w.view.CreateCube(pos, t, true)
}

func (w *World) dematerialise(pos BlockPos) {
	if id, ok := w.entities[pos]; ok {
		w.view.DestroyEntity(id)
		delete(w.entities, pos)
	}
}
