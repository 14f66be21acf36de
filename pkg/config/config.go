// Package config loads armature settings from defaults, a TOML file and
// ARMATURE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Kernel    KernelConfig
	Grid      GridConfig
	Placement PlacementConfig
	Clipboard ClipboardConfig
	History   HistoryConfig
	Log       LogConfig
	Viewport  ViewportConfig
}

// KernelConfig selects the geometry backend.
type KernelConfig struct {
	Backend   string
	MeshCells int `mapstructure:"mesh_cells"`
}

// GridConfig holds snapping increments.
type GridConfig struct {
	Cell         float64
	AngleSnapDeg float64 `mapstructure:"angle_snap_deg"`
}

// PlacementConfig tunes collision-aware spawning.
type PlacementConfig struct {
	Epsilon  float64
	MaxDepth int `mapstructure:"max_depth"`
	Spawn    []float64
}

// ClipboardConfig tunes paste previews.
type ClipboardConfig struct {
	Margin float64
}

// HistoryConfig bounds the undo stack. Zero means unbounded.
type HistoryConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string
}

// ViewportConfig sizes the orthographic viewports.
type ViewportConfig struct {
	Width        int
	Height       int
	FrustumWidth float64 `mapstructure:"frustum_width"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kernel.backend", "sdfx")
	v.SetDefault("kernel.mesh_cells", 64)
	v.SetDefault("grid.cell", 0.5)
	v.SetDefault("grid.angle_snap_deg", 22.5)
	v.SetDefault("placement.epsilon", 0.01)
	v.SetDefault("placement.max_depth", 20)
	v.SetDefault("placement.spawn", []float64{0, 0, 0})
	v.SetDefault("clipboard.margin", 0.5)
	v.SetDefault("history.max_depth", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)
	v.SetDefault("viewport.frustum_width", 20.0)
}

// Default returns the built-in configuration without touching disk or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults alone always decode.
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from file and env. Env var overrides use prefix ARMATURE_.
// The file is taken from ARMATURE_CONFIG when set, otherwise
// ~/.config/armature/config.toml; a missing file is not an error.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ARMATURE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "armature"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ARMATURE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the editing core cannot operate with.
func (c Config) Validate() error {
	switch c.Kernel.Backend {
	case "sdfx", "manifold":
	default:
		return fmt.Errorf("config: unknown kernel.backend %q", c.Kernel.Backend)
	}
	if len(c.Placement.Spawn) != 3 {
		return fmt.Errorf("config: placement.spawn needs 3 components, got %d", len(c.Placement.Spawn))
	}
	if c.Placement.MaxDepth <= 0 {
		return fmt.Errorf("config: placement.max_depth must be positive")
	}
	if c.Grid.Cell <= 0 || c.Grid.AngleSnapDeg <= 0 {
		return fmt.Errorf("config: grid increments must be positive")
	}
	if c.History.MaxDepth < 0 {
		return fmt.Errorf("config: history.max_depth must not be negative")
	}
	return nil
}

// SpawnPoint returns placement.spawn as a fixed-size vector.
func (c Config) SpawnPoint() [3]float64 {
	var p [3]float64
	copy(p[:], c.Placement.Spawn)
	return p
}
