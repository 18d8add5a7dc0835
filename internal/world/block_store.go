package world

import "iter"

// BlockStore maps lattice positions to block types. It is the single source of
// truth for world content and holds at most one entry per position.
//
// Accessed only from the session tick goroutine; there is no locking.
type BlockStore struct {
	blocks map[BlockPos]BlockType

	// Per-chunk index used by eviction and re-materialisation.
	chunkSize int
	byChunk   map[ChunkCoord]map[BlockPos]struct{}
}

// NewBlockStore creates an empty store indexed by chunks of chunkSize.
func NewBlockStore(chunkSize int) *BlockStore {
	return &BlockStore{
		blocks:    make(map[BlockPos]BlockType),
		chunkSize: chunkSize,
		byChunk:   make(map[ChunkCoord]map[BlockPos]struct{}),
	}
}

// Get returns the block type at pos and whether one is stored.
func (s *BlockStore) Get(pos BlockPos) (BlockType, bool) {
	t, ok := s.blocks[pos]
	return t, ok
}

// Has reports whether pos is occupied.
func (s *BlockStore) Has(pos BlockPos) bool {
	_, ok := s.blocks[pos]
	return ok
}

// IsSolid satisfies physics.Solid.
func (s *BlockStore) IsSolid(pos BlockPos) bool {
	return s.Has(pos)
}

// Set stores t at pos, overwriting any previous type.
func (s *BlockStore) Set(pos BlockPos, t BlockType) {
	if _, ok := s.blocks[pos]; !ok {
		coord := ChunkOfBlock(pos, s.chunkSize)
		idx := s.byChunk[coord]
		if idx == nil {
			idx = make(map[BlockPos]struct{})
			s.byChunk[coord] = idx
		}
		idx[pos] = struct{}{}
	}
	s.blocks[pos] = t
}

// Remove deletes pos and returns the type it held. Removing an empty position
// is a no-op.
func (s *BlockStore) Remove(pos BlockPos) (BlockType, bool) {
	t, ok := s.blocks[pos]
	if !ok {
		return BlockTypeAir, false
	}
	delete(s.blocks, pos)

	coord := ChunkOfBlock(pos, s.chunkSize)
	if idx := s.byChunk[coord]; idx != nil {
		delete(idx, pos)
		if len(idx) == 0 {
			delete(s.byChunk, coord)
		}
	}
	return t, true
}

// Len returns the number of stored blocks.
func (s *BlockStore) Len() int {
	return len(s.blocks)
}

// All iterates every (position, type) pair in unspecified order.
func (s *BlockStore) All() iter.Seq2[BlockPos, BlockType] {
	return func(yield func(BlockPos, BlockType) bool) {
		for pos, t := range s.blocks {
			if !yield(pos, t) {
				return
			}
		}
	}
}

// InChunk iterates the blocks whose x/z footprint lies in coord.
func (s *BlockStore) InChunk(coord ChunkCoord) iter.Seq2[BlockPos, BlockType] {
	return func(yield func(BlockPos, BlockType) bool) {
		for pos := range s.byChunk[coord] {
			if !yield(pos, s.blocks[pos]) {
				return
			}
		}
	}
}

// Clear drops every block.
func (s *BlockStore) Clear() {
	clear(s.blocks)
	clear(s.byChunk)
}
