package persistence

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"turbocraft/internal/world"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Options names the two save files inside a Storage directory.
type Options struct {
	WorldFile     string
	InventoryFile string
	Compress      bool // zstd-frame new saves; loads auto-detect either form
}

// Storage reads and writes the world and inventory save files.
type Storage struct {
	dir  string
	opts Options
	log  *slog.Logger

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New creates a Storage rooted at dir, creating it if needed.
func New(dir string, opts Options, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Storage{dir: dir, opts: opts, log: log, enc: enc, dec: dec}, nil
}

// Close releases the compression state.
func (s *Storage) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

func (s *Storage) WorldPath() string     { return filepath.Join(s.dir, s.opts.WorldFile) }
func (s *Storage) InventoryPath() string { return filepath.Join(s.dir, s.opts.InventoryFile) }

// SaveWorld writes every block to the world file atomically.
func (s *Storage) SaveWorld(blocks iter.Seq2[world.BlockPos, world.BlockType]) error {
	data, err := EncodeWorld(blocks)
	if err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	if err := s.atomicWrite(s.WorldPath(), data); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	s.log.Info("saved world", "path", s.WorldPath(), "bytes", len(data))
	return nil
}

// LoadWorld reads the world file. A missing file yields nil, nil.
func (s *Storage) LoadWorld() (map[world.BlockPos]world.BlockType, error) {
	data, err := s.read(s.WorldPath())
	if err != nil || data == nil {
		return nil, err
	}
	blocks, err := DecodeWorld(data)
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", s.WorldPath(), err)
	}
	s.log.Info("loaded world", "path", s.WorldPath(), "blocks", len(blocks))
	return blocks, nil
}

// SaveInventory writes the slot counts atomically.
func (s *Storage) SaveInventory(counts []int32) error {
	if err := s.atomicWrite(s.InventoryPath(), EncodeInventory(counts)); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	s.log.Info("saved inventory", "path", s.InventoryPath(), "slots", len(counts))
	return nil
}

// LoadInventory reads the inventory file expecting slots entries. A missing
// file yields nil, nil.
func (s *Storage) LoadInventory(slots int) ([]int32, error) {
	data, err := s.read(s.InventoryPath())
	if err != nil || data == nil {
		return nil, err
	}
	counts, err := DecodeInventory(data, slots)
	if err != nil {
		return nil, fmt.Errorf("load inventory %s: %w", s.InventoryPath(), err)
	}
	s.log.Info("loaded inventory", "path", s.InventoryPath())
	return counts, nil
}

func (s *Storage) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no save file", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.HasPrefix(data, zstdMagic) {
		raw, err := s.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w: %w", path, ErrCorruptSaveData, err)
		}
		return raw, nil
	}
	return data, nil
}

// atomicWrite writes data using a temp file + rename.
func (s *Storage) atomicWrite(path string, data []byte) error {
	if s.opts.Compress {
		data = s.enc.EncodeAll(data, nil)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
