package rubble

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultFragmentTimeout = 10.0

var ErrInvalidConfig = errors.New("invalid config")

// Config is the root configuration. Any key missing from a YAML file keeps
// its DefaultConfig value.
type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Fracture FractureConfig `yaml:"fracture"`
	Sim      SimConfig      `yaml:"sim"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// GridConfig bounds the voxel index. Horizontal axes cover
// [-Offset, Size-Offset), the vertical axis covers [0, Height).
type GridConfig struct {
	Size   int `yaml:"size"`
	Height int `yaml:"height"`
	Offset int `yaml:"offset"`
}

type PhysicsConfig struct {
	Gravity          float32       `yaml:"gravity"`
	AirDrag          float32       `yaml:"air_drag"`
	GroundFriction   float32       `yaml:"ground_friction"`
	BounceDamping    float32       `yaml:"bounce_damping"`
	AngularDamping   float32       `yaml:"angular_damping"`
	MinVelocity      float32       `yaml:"min_velocity"`
	MinAngular       float32       `yaml:"min_angular"`
	GroundY          float32       `yaml:"ground_y"`
	TerminalVelocity float32       `yaml:"terminal_velocity"`
	MaxAngularSpeed  float32       `yaml:"max_angular_speed"`
	SpinTransfer     float32       `yaml:"spin_transfer"`
	KillFloor        float32       `yaml:"kill_floor"`
	MaxDt            time.Duration `yaml:"max_dt"`
}

type FractureConfig struct {
	MinPieces        int     `yaml:"min_pieces"`
	MaxPieces        int     `yaml:"max_pieces"`
	MicroParticles   int     `yaml:"micro_particles"`
	DustParticles    int     `yaml:"dust_particles"`
	MicroSize        float32 `yaml:"micro_size"`
	DustSize         float32 `yaml:"dust_size"`
	SecondaryChance  int     `yaml:"secondary_chance"`
	CrackDepthLevels int     `yaml:"crack_depth_levels"`
	MinShardVolume   float32 `yaml:"min_shard_volume"`
	SecondaryMinVol  float32 `yaml:"secondary_min_volume"`
	SeedInset        float32 `yaml:"seed_inset"`
	ClipJitter       float32 `yaml:"clip_jitter"`
	FragmentTimeout  float32 `yaml:"fragment_timeout"`
	ChipLifetime     float32 `yaml:"chip_lifetime"`
	DustLifetime     float32 `yaml:"dust_lifetime"`
	Eternal          bool    `yaml:"eternal"`
}

type SimConfig struct {
	Seed         int64   `yaml:"seed"`
	Debug        bool    `yaml:"debug"`
	ViewDistance float32 `yaml:"view_distance"`
	EventLogSize int     `yaml:"event_log_size"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Size:   256,
			Height: 128,
			Offset: 64,
		},
		Physics: PhysicsConfig{
			Gravity:          9.81,
			AirDrag:          0.05,
			GroundFriction:   0.85,
			BounceDamping:    0.2,
			AngularDamping:   0.92,
			MinVelocity:      0.03,
			MinAngular:       0.05,
			GroundY:          -0.3,
			TerminalVelocity: 20,
			MaxAngularSpeed:  3,
			SpinTransfer:     0.08,
			KillFloor:        -50,
			MaxDt:            defaultMaxDt,
		},
		Fracture: FractureConfig{
			MinPieces:        7,
			MaxPieces:        14,
			MicroParticles:   25,
			DustParticles:    40,
			MicroSize:        0.035,
			DustSize:         0.015,
			SecondaryChance:  3,
			CrackDepthLevels: 3,
			MinShardVolume:   0.0003,
			SecondaryMinVol:  0.01,
			SeedInset:        0.85,
			ClipJitter:       0.025,
			FragmentTimeout:  defaultFragmentTimeout,
			ChipLifetime:     8,
			DustLifetime:     5,
		},
		Sim: SimConfig{
			Seed:         42,
			ViewDistance: 80,
			EventLogSize: 64,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "rubble",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. With an empty path it
// falls back to RUBBLE_CONFIG; with neither set it returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv("RUBBLE_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Grid.Size <= 0 || c.Grid.Height <= 0:
		return fmt.Errorf("%w: grid dimensions must be positive (size=%d height=%d)", ErrInvalidConfig, c.Grid.Size, c.Grid.Height)
	case c.Grid.Offset < 0 || c.Grid.Offset >= c.Grid.Size:
		return fmt.Errorf("%w: grid offset %d outside [0,%d)", ErrInvalidConfig, c.Grid.Offset, c.Grid.Size)
	case c.Fracture.MinPieces < 1 || c.Fracture.MinPieces > c.Fracture.MaxPieces:
		return fmt.Errorf("%w: fracture pieces range [%d,%d]", ErrInvalidConfig, c.Fracture.MinPieces, c.Fracture.MaxPieces)
	case c.Fracture.SecondaryChance < 0:
		return fmt.Errorf("%w: secondary chance %d", ErrInvalidConfig, c.Fracture.SecondaryChance)
	case c.Fracture.SeedInset <= 0:
		return fmt.Errorf("%w: seed inset %g must be positive", ErrInvalidConfig, c.Fracture.SeedInset)
	case c.Fracture.FragmentTimeout <= 0:
		return fmt.Errorf("%w: fragment timeout %g must be positive", ErrInvalidConfig, c.Fracture.FragmentTimeout)
	case c.Fracture.ChipLifetime < 0 || c.Fracture.DustLifetime < 0:
		return fmt.Errorf("%w: negative fragment lifetime", ErrInvalidConfig)
	case c.Physics.MaxDt <= 0:
		return fmt.Errorf("%w: max dt %s", ErrInvalidConfig, c.Physics.MaxDt)
	}
	return nil
}
