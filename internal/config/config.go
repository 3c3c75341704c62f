package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "POOLECS_CONFIG"

type Config struct {
	World    WorldConfig    `toml:"world"`
	Loop     LoopConfig     `toml:"loop"`
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
	Paths    PathsConfig    `toml:"paths"`
	Render   RenderConfig   `toml:"render"`
	Profile  ProfileConfig  `toml:"profile"`
	Game     GameConfig     `toml:"game"`
}

type WorldConfig struct {
	MaxPools        int `toml:"max_pools"`
	DefaultCapacity int `toml:"default_capacity"` // used when a pool definition omits capacity
}

type LoopConfig struct {
	TickRate  Duration `toml:"tick_rate"`
	MaxFrames int      `toml:"max_frames"` // 0 runs until interrupted
	// SnapshotEvery is the number of frames between prefab snapshots; 0 disables them.
	SnapshotEvery int `toml:"snapshot_every"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty logs to stderr
}

type DatabaseConfig struct {
	DSN             string   `toml:"dsn"` // empty disables the database
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

type PathsConfig struct {
	SchemaFile string `toml:"schema_file"`
	PoolFile   string `toml:"pool_file"`
	PrefabDir  string `toml:"prefab_dir"`
	ScriptDir  string `toml:"script_dir"`
}

type RenderConfig struct {
	Enabled bool `toml:"enabled"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu" or "mem"
	Dir  string `toml:"dir"`
}

type GameConfig struct {
	SpawnInterval Duration `toml:"spawn_interval"`
	BubblePrefabs []string `toml:"bubble_prefabs"`
	Script        string   `toml:"script"` // Lua update_<script> run on the background entity
	Seed          uint64   `toml:"seed"`
}

// Duration reads TOML strings such as "16ms" or "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config path from the environment, or fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return fallback
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	if c.World.MaxPools <= 0 {
		return fmt.Errorf("world.max_pools must be positive, got %d", c.World.MaxPools)
	}
	if c.World.DefaultCapacity <= 0 {
		return fmt.Errorf("world.default_capacity must be positive, got %d", c.World.DefaultCapacity)
	}
	if c.Loop.TickRate.Duration <= 0 {
		return fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate)
	}
	if c.Game.SpawnInterval.Duration <= 0 {
		return fmt.Errorf("game.spawn_interval must be positive, got %s", c.Game.SpawnInterval)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode %q: want cpu, mem or empty", c.Profile.Mode)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			MaxPools:        64,
			DefaultCapacity: 100,
		},
		Loop: LoopConfig{
			TickRate:      Duration{16 * time.Millisecond},
			MaxFrames:     600,
			SnapshotEvery: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration{30 * time.Minute},
		},
		Paths: PathsConfig{
			SchemaFile: "data/schema.yaml",
			PoolFile:   "data/pools.yaml",
			PrefabDir:  "data/prefabs",
			ScriptDir:  "scripts",
		},
		Render: RenderConfig{
			Enabled: false,
			Width:   80,
			Height:  24,
		},
		Game: GameConfig{
			SpawnInterval: Duration{1500 * time.Millisecond},
			BubblePrefabs: []string{"Red_Bubble", "Green_Bubble", "Blue_Bubble"},
			Seed:          1,
		},
	}
}
