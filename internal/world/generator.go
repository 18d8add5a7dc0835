package world

// TerrainGenerator produces the blocks of a chunk. Implementations must be
// deterministic: the same coordinate always yields the same blocks.
type TerrainGenerator interface {
	PopulateChunk(coord ChunkCoord, size int, emit func(pos BlockPos, t BlockType))
}

// FlatGenerator fills a single layer at GroundY with one block type.
type FlatGenerator struct {
	GroundY int
	Block   BlockType
}

// NewFlatGenerator creates a flat generator at groundY using block.
func NewFlatGenerator(groundY int, block BlockType) *FlatGenerator {
	if !block.Valid() {
		block = BlockTypeGrass
	}
	return &FlatGenerator{GroundY: groundY, Block: block}
}

// PopulateChunk emits one block per local cell of the chunk footprint.
func (g *FlatGenerator) PopulateChunk(coord ChunkCoord, size int, emit func(pos BlockPos, t BlockType)) {
	ox, oz := coord.Origin(size)
	for lx := range size {
		for lz := range size {
			emit(BlockPos{X: ox + lx, Y: g.GroundY, Z: oz + lz}, g.Block)
		}
	}
}
