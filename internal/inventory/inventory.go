package inventory

import "fmt"

const (
	// Size is the number of slots, one per palette block type.
	Size = 32
	// DefaultCount is the starting stock of every slot.
	DefaultCount = 10
)

// Inventory holds the remaining count of each block type. Slot i holds block
// type i+1.
type Inventory struct {
	counts      [Size]int32
	CurrentItem int // selected slot, 0..Size-1
}

// New returns an inventory with every slot stocked to start.
func New(start int32) *Inventory {
	inv := &Inventory{}
	for i := range inv.counts {
		inv.counts[i] = start
	}
	return inv
}

// Count returns the stock of slot, or 0 for an out-of-range slot.
func (inv *Inventory) Count(slot int) int32 {
	if slot < 0 || slot >= Size {
		return 0
	}
	return inv.counts[slot]
}

// Counts returns a copy of all slot counts in order.
func (inv *Inventory) Counts() []int32 {
	out := make([]int32, Size)
	copy(out, inv.counts[:])
	return out
}

// Restore replaces every count. counts must have exactly Size entries.
func (inv *Inventory) Restore(counts []int32) error {
	if len(counts) != Size {
		return fmt.Errorf("inventory: got %d slots, want %d", len(counts), Size)
	}
	copy(inv.counts[:], counts)
	return nil
}

// Consume takes one item from slot. It fails without side effects when the
// slot is empty.
func (inv *Inventory) Consume(slot int) bool {
	if slot < 0 || slot >= Size || inv.counts[slot] <= 0 {
		return false
	}
	inv.counts[slot]--
	return true
}

// SetCurrentItem selects slot directly. Out-of-range values are ignored.
func (inv *Inventory) SetCurrentItem(slot int) {
	if slot >= 0 && slot < Size {
		inv.CurrentItem = slot
	}
}

// ChangeCurrentItem moves the selection one slot (scroll wheel), wrapping
// around the full hot-bar.
func (inv *Inventory) ChangeCurrentItem(direction int) {
	if direction > 0 {
		direction = 1
	} else if direction < 0 {
		direction = -1
	}

	inv.CurrentItem -= direction
	for inv.CurrentItem < 0 {
		inv.CurrentItem += Size
	}
	for inv.CurrentItem >= Size {
		inv.CurrentItem -= Size
	}
}
