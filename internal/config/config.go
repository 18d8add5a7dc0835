package config

import (
	"fmt"
	"os"
	"time"

	"turbocraft/internal/inventory"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no -config flag is given.
const EnvConfigPath = "TURBOCRAFT_CONFIG"

// Destroy policies.
const (
	DestroyCreativeOnly = "creative-only"
	DestroyAlways       = "always"
)

// Config holds the client configuration.
type Config struct {
	ChunkSize      int `yaml:"chunk_size"`
	RenderDistance int `yaml:"render_distance"` // in chunks
	EvictDistance  int `yaml:"evict_distance"`  // in chunks, 0 = never evict
	GroundY        int `yaml:"ground_y"`
	GroundBlock    int `yaml:"ground_block"`

	SpawnHeight  float32       `yaml:"spawn_height"`
	GravityDelay time.Duration `yaml:"gravity_delay"`

	GameMode       string  `yaml:"game_mode"`      // "creative" or "survival"
	DestroyPolicy  string  `yaml:"destroy_policy"` // "creative-only" or "always"
	InventoryStart int     `yaml:"inventory_start"`
	ReachDistance  float32 `yaml:"reach_distance"`

	SaveDir       string `yaml:"save_dir"`
	WorldFile     string `yaml:"world_file"`
	InventoryFile string `yaml:"inventory_file"`
	CompressSaves bool   `yaml:"compress_saves"`

	PlayerName    string        `yaml:"player_name"`
	ServerAddress string        `yaml:"server_address"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`

	TickRate    int    `yaml:"tick_rate"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`

	// KeyBindings overrides default bindings: key name to action name.
	KeyBindings map[string]string `yaml:"key_bindings"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ChunkSize:      8,
		RenderDistance: 2,
		GroundY:        0,
		GroundBlock:    1,
		SpawnHeight:    3,
		GravityDelay:   500 * time.Millisecond,
		GameMode:       "creative",
		DestroyPolicy:  DestroyCreativeOnly,
		InventoryStart: inventory.DefaultCount,
		ReachDistance:  8,
		SaveDir:        ".",
		WorldFile:      "save.tcworld",
		InventoryFile:  "player.tcsave",
		CompressSaves:  true,
		PlayerName:     "Turbo",
		ServerAddress:  "localhost:65432",
		DialTimeout:    2 * time.Second,
		TickRate:       60,
		LogLevel:       "info",
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to
// $TURBOCRAFT_CONFIG; if that is empty too, or the file does not exist, the
// defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	flagged := *cfg
	*cfg = *fromFile

	if explicitFlags["chunk-size"] {
		cfg.ChunkSize = flagged.ChunkSize
	}
	if explicitFlags["render-distance"] {
		cfg.RenderDistance = flagged.RenderDistance
	}
	if explicitFlags["evict-distance"] {
		cfg.EvictDistance = flagged.EvictDistance
	}
	if explicitFlags["mode"] {
		cfg.GameMode = flagged.GameMode
	}
	if explicitFlags["destroy-policy"] {
		cfg.DestroyPolicy = flagged.DestroyPolicy
	}
	if explicitFlags["save-dir"] {
		cfg.SaveDir = flagged.SaveDir
	}
	if explicitFlags["compress"] {
		cfg.CompressSaves = flagged.CompressSaves
	}
	if explicitFlags["name"] {
		cfg.PlayerName = flagged.PlayerName
	}
	if explicitFlags["server"] {
		cfg.ServerAddress = flagged.ServerAddress
	}
	if explicitFlags["log-level"] {
		cfg.LogLevel = flagged.LogLevel
	}
	if explicitFlags["metrics-addr"] {
		cfg.MetricsAddr = flagged.MetricsAddr
	}
}

// Normalize clamps numeric settings into range and rejects unknown names.
func (c *Config) Normalize() error {
	c.RenderDistance = clamp(c.RenderDistance, 1, 16)
	c.ChunkSize = clamp(c.ChunkSize, 1, 64)
	if c.EvictDistance < 0 {
		c.EvictDistance = 0
	}
	if c.EvictDistance > 0 && c.EvictDistance < c.RenderDistance {
		c.EvictDistance = c.RenderDistance
	}
	if c.GroundBlock < 1 || c.GroundBlock > 32 {
		c.GroundBlock = 1
	}
	if c.InventoryStart < 0 {
		c.InventoryStart = 0
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.ReachDistance <= 0 {
		c.ReachDistance = 8
	}

	switch c.GameMode {
	case "creative", "survival":
	default:
		return fmt.Errorf("unknown game mode %q", c.GameMode)
	}
	switch c.DestroyPolicy {
	case DestroyCreativeOnly, DestroyAlways:
	default:
		return fmt.Errorf("unknown destroy policy %q", c.DestroyPolicy)
	}
	return nil
}

// TickInterval is the duration of one update tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
