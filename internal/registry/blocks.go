// Package registry names the block palette.
package registry

import (
	"fmt"

	"turbocraft/internal/world"
)

// BlockDefinition defines the properties of a block type
type BlockDefinition struct {
	ID      world.BlockType
	Name    string
	Texture string
}

var Blocks = make(map[world.BlockType]*BlockDefinition)

func RegisterBlock(def *BlockDefinition) {
	if def.Texture == "" {
		def.Texture = fmt.Sprintf("assets/block_%d.png", def.ID)
	}
	Blocks[def.ID] = def
}

var namedBlocks = []string{
	"grass",
	"dirt",
	"stone",
	"cobblestone",
	"bedrock",
	"stonebrick",
	"oak_planks",
	"birch_planks",
	"spruce_planks",
	"jungle_planks",
	"acacia_planks",
}

// InitRegistry registers every palette entry. Types without a name of their
// own are called block_<id>.
func InitRegistry() {
	for id := world.BlockType(1); id <= world.PaletteSize; id++ {
		name := fmt.Sprintf("block_%d", id)
		if int(id) <= len(namedBlocks) {
			name = namedBlocks[id-1]
		}
		RegisterBlock(&BlockDefinition{ID: id, Name: name})
	}
}

// Name returns the registered name of t.
func Name(t world.BlockType) string {
	if def, ok := Blocks[t]; ok {
		return def.Name
	}
	if t == world.BlockTypeAir {
		return "air"
	}
	return fmt.Sprintf("unknown_%d", t)
}

// Texture returns the texture path of t, or "" for an unregistered type.
func Texture(t world.BlockType) string {
	if def, ok := Blocks[t]; ok {
		return def.Texture
	}
	return ""
}
