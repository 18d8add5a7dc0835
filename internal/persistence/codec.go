package persistence

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"turbocraft/internal/world"
)

// ErrCorruptSaveData is returned, wrapped, for any save file that cannot be
// decoded.
var ErrCorruptSaveData = errors.New("corrupt save data")

var (
	worldMagic     = [4]byte{'T', 'C', 'W', 1}
	inventoryMagic = [4]byte{'T', 'C', 'I', 1}
)

const (
	headerSize  = 8  // magic + u32 count
	blockRecord = 14 // i32 x, i32 y, i32 z, u16 type
)

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSaveData, fmt.Sprintf(format, args...))
}

// EncodeWorld writes every (position, type) pair as fixed-width little-endian
// records. Records are sorted by position so equal stores encode equally.
// Positions that do not fit the i32 record fields are rejected.
func EncodeWorld(blocks iter.Seq2[world.BlockPos, world.BlockType]) ([]byte, error) {
	type rec struct {
		pos world.BlockPos
		t   world.BlockType
	}
	var recs []rec
	for pos, t := range blocks {
		if !fitsInt32(pos.X) || !fitsInt32(pos.Y) || !fitsInt32(pos.Z) {
			return nil, fmt.Errorf("world: position %v does not fit a save record", pos)
		}
		recs = append(recs, rec{pos, t})
	}
	slices.SortFunc(recs, func(a, b rec) int {
		if c := cmp.Compare(a.pos.Y, b.pos.Y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.pos.X, b.pos.X); c != 0 {
			return c
		}
		return cmp.Compare(a.pos.Z, b.pos.Z)
	})

	buf := make([]byte, headerSize, headerSize+blockRecord*len(recs))
	copy(buf, worldMagic[:])
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(recs)))
	for _, r := range recs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(r.pos.X)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(r.pos.Y)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(r.pos.Z)))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(r.t))
	}
	return buf, nil
}

func fitsInt32(v int) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// DecodeWorld is the inverse of EncodeWorld.
func DecodeWorld(data []byte) (map[world.BlockPos]world.BlockType, error) {
	count, body, err := readHeader(data, worldMagic)
	if err != nil {
		return nil, err
	}
	if want := int(count) * blockRecord; len(body) != want {
		return nil, corrupt("world: %d records need %d bytes, got %d", count, want, len(body))
	}

	blocks := make(map[world.BlockPos]world.BlockType, count)
	for i := 0; i < int(count); i++ {
		r := body[i*blockRecord:]
		pos := world.BlockPos{
			X: int(int32(binary.LittleEndian.Uint32(r[0:]))),
			Y: int(int32(binary.LittleEndian.Uint32(r[4:]))),
			Z: int(int32(binary.LittleEndian.Uint32(r[8:]))),
		}
		t := world.BlockType(binary.LittleEndian.Uint16(r[12:]))
		if !t.Valid() {
			return nil, corrupt("world: record %d at %v has block type %d", i, pos, t)
		}
		if _, dup := blocks[pos]; dup {
			return nil, corrupt("world: duplicate position %v", pos)
		}
		blocks[pos] = t
	}
	return blocks, nil
}

// EncodeInventory writes the counts as a length-prefixed i32 array.
func EncodeInventory(counts []int32) []byte {
	buf := make([]byte, headerSize, headerSize+4*len(counts))
	copy(buf, inventoryMagic[:])
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(counts)))
	for _, c := range counts {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c))
	}
	return buf
}

// DecodeInventory is the inverse of EncodeInventory. want is the expected
// slot count; a negative want accepts any length.
func DecodeInventory(data []byte, want int) ([]int32, error) {
	n, body, err := readHeader(data, inventoryMagic)
	if err != nil {
		return nil, err
	}
	if want >= 0 && int(n) != want {
		return nil, corrupt("inventory: %d slots, want %d", n, want)
	}
	if len(body) != int(n)*4 {
		return nil, corrupt("inventory: %d slots need %d bytes, got %d", n, n*4, len(body))
	}

	counts := make([]int32, n)
	for i := range counts {
		counts[i] = int32(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return counts, nil
}

func readHeader(data []byte, magic [4]byte) (uint32, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, corrupt("short header: %d bytes", len(data))
	}
	if [4]byte(data[:4]) != magic {
		return 0, nil, corrupt("bad magic %q", data[:4])
	}
	return binary.LittleEndian.Uint32(data[4:8]), data[headerSize:], nil
}
