package game

import (
	"fmt"

	"turbocraft/internal/player"
	"turbocraft/internal/world"
)

// DestroyPolicy decides whether survival mode may destroy blocks.
type DestroyPolicy int

const (
	DestroyCreativeOnly DestroyPolicy = iota
	DestroyAlways
)

func ParseDestroyPolicy(s string) (DestroyPolicy, error) {
	switch s {
	case "creative-only":
		return DestroyCreativeOnly, nil
	case "always":
		return DestroyAlways, nil
	}
	return DestroyCreativeOnly, fmt.Errorf("unknown destroy policy %q", s)
}

// EditResult is the outcome of a place or destroy. Only EditPlaced and
// EditDestroyed change state; the rest are silent rejections.
type EditResult int

const (
	EditNone EditResult = iota
	EditPlaced
	EditDestroyed
	EditNoTarget
	EditOccupied
	EditOutOfStock
	EditNotAllowed
	EditEmpty
)

func (r EditResult) String() string {
	switch r {
	case EditNone:
		return "none"
	case EditPlaced:
		return "placed"
	case EditDestroyed:
		return "destroyed"
	case EditNoTarget:
		return "no_target"
	case EditOccupied:
		return "occupied"
	case EditOutOfStock:
		return "out_of_stock"
	case EditNotAllowed:
		return "not_allowed"
	case EditEmpty:
		return "empty"
	default:
		return fmt.Sprintf("EditResult(%d)", int(r))
	}
}

// SelectedType is the block type held in slot.
func SelectedType(slot int) world.BlockType {
	return world.BlockType(slot + 1)
}

// PlaceTarget is the lattice cell in front of the hit face.
func PlaceTarget(hit world.Hit) world.BlockPos {
	return world.NearestBlockPos(hit.Position.Vec3().Add(hit.Normal))
}

func (s *Session) destroy(hit world.Hit) (EditResult, world.BlockPos) {
	if !hit.Hit {
		return EditNoTarget, world.BlockPos{}
	}
	if s.mode == player.GameModeSurvival && s.destroyPolicy == DestroyCreativeOnly {
		return EditNotAllowed, hit.Position
	}
	if !s.world.Remove(hit.Position) {
		return EditEmpty, hit.Position
	}
	return EditDestroyed, hit.Position
}

func (s *Session) place(hit world.Hit) (EditResult, world.BlockPos) {
	if !hit.Hit {
		return EditNoTarget, world.BlockPos{}
	}
	target := PlaceTarget(hit)
	if _, ok := s.world.Get(target); ok {
		return EditOccupied, target
	}

	slot := s.inventory.CurrentItem
	survival := s.mode == player.GameModeSurvival
	if survival && s.inventory.Count(slot) <= 0 {
		return EditOutOfStock, target
	}
	if !s.world.Place(target, SelectedType(slot)) {
		return EditOccupied, target
	}
	if survival {
		s.inventory.Consume(slot)
	}
	return EditPlaced, target
}
