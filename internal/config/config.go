package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Versifine/stride/internal/locomotion"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidTunables = errors.New("invalid controller tunables")
	ErrInvalidConfig   = errors.New("invalid config")
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	World      WorldConfig      `yaml:"world"`
	Audio      AudioConfig      `yaml:"audio"`
	Animation  AnimationConfig  `yaml:"animation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Frame      FrameConfig      `yaml:"frame"`
	Session    SessionConfig    `yaml:"session"`
}

// ControllerConfig mirrors locomotion.Tunables. Angles are degrees.
type ControllerConfig struct {
	MoveSpeed               float64 `yaml:"move_speed"`
	SprintSpeed             float64 `yaml:"sprint_speed"`
	SpeedChangeRate         float64 `yaml:"speed_change_rate"`
	Gravity                 float64 `yaml:"gravity"`
	FallTimeout             float64 `yaml:"fall_timeout"`
	GroundedOffset          float64 `yaml:"grounded_offset"`
	GroundedRadius          float64 `yaml:"grounded_radius"`
	GroundLayers            []int   `yaml:"ground_layers"`
	LookSensitivity         float64 `yaml:"look_sensitivity"`
	PitchMin                float64 `yaml:"pitch_min"`
	PitchMax                float64 `yaml:"pitch_max"`
	AnimationDampTime       float64 `yaml:"animation_damp_time"`
	FootstepVolume          float64 `yaml:"footstep_volume"`
	FootstepWeightThreshold float64 `yaml:"footstep_weight_threshold"`
}

type WorldConfig struct {
	// Level is a yaml or Tiled .tmx file. Empty selects the built-in arena.
	Level    string      `yaml:"level"`
	Spawn    *[3]float64 `yaml:"spawn"`
	CellSize int         `yaml:"cell_size"`
	// TriggerLayers selects the trigger zones whose scripts apply to the player.
	TriggerLayers []int `yaml:"trigger_layers"`
	// RespawnDepth is how far below the level bounds the body falls before it respawns.
	RespawnDepth float64 `yaml:"respawn_depth"`
}

type AudioConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SampleRate   int      `yaml:"sample_rate"`
	Clips        []string `yaml:"clips"`
	MinDistance  float64  `yaml:"min_distance"`
	MasterVolume float64  `yaml:"master_volume"`
}

type AnimationConfig struct {
	StrideLength float64 `yaml:"stride_length"`
	WalkSpeed    float64 `yaml:"walk_speed"`
	RunThreshold float64 `yaml:"run_threshold"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// MetricsConfig configures the telemetry server. An empty Addr disables it.
type MetricsConfig struct {
	Addr        string   `yaml:"addr"`
	FrameRate   float64  `yaml:"frame_rate"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type FrameConfig struct {
	Rate int `yaml:"rate"`
}

type SessionConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppName string `yaml:"app_name"`
}

func Default() *Config {
	t := locomotion.DefaultTunables()
	return &Config{
		Controller: ControllerConfig{
			MoveSpeed:               t.MoveSpeed,
			SprintSpeed:             t.SprintSpeed,
			SpeedChangeRate:         t.SpeedChangeRate,
			Gravity:                 t.Gravity,
			FallTimeout:             t.FallTimeout,
			GroundedOffset:          t.GroundedOffset,
			GroundedRadius:          t.GroundedRadius,
			GroundLayers:            []int{0},
			LookSensitivity:         t.LookSensitivity,
			PitchMin:                t.PitchMin,
			PitchMax:                t.PitchMax,
			AnimationDampTime:       t.AnimationDampTime,
			FootstepVolume:          t.FootstepVolume,
			FootstepWeightThreshold: t.FootstepWeightThreshold,
		},
		World: WorldConfig{
			CellSize:      2,
			TriggerLayers: []int{1},
			RespawnDepth:  20,
		},
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   44100,
			MinDistance:  1,
			MasterVolume: 1,
		},
		Animation: AnimationConfig{
			StrideLength: 0.8,
			WalkSpeed:    t.MoveSpeed,
			RunThreshold: 1.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "stride.log",
		},
		Metrics: MetricsConfig{
			FrameRate:   10,
			CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Frame: FrameConfig{Rate: 60},
		Session: SessionConfig{
			Enabled: true,
			AppName: "stride",
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Controller.validate(); err != nil {
		return err
	}
	if err := validLayers(c.World.TriggerLayers); err != nil {
		return fmt.Errorf("%w: world.trigger_layers: %v", ErrInvalidConfig, err)
	}
	if c.World.CellSize < 0 {
		return fmt.Errorf("%w: world.cell_size %d < 0", ErrInvalidConfig, c.World.CellSize)
	}
	if c.World.RespawnDepth <= 0 {
		return fmt.Errorf("%w: world.respawn_depth must be positive", ErrInvalidConfig)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio.sample_rate %d", ErrInvalidConfig, c.Audio.SampleRate)
	}
	if c.Audio.MinDistance <= 0 || c.Audio.MasterVolume < 0 {
		return fmt.Errorf("%w: audio min_distance and master_volume", ErrInvalidConfig)
	}
	if c.Animation.StrideLength <= 0 || c.Animation.WalkSpeed <= 0 || c.Animation.RunThreshold < 1 {
		return fmt.Errorf("%w: animation stride_length, walk_speed and run_threshold", ErrInvalidConfig)
	}
	if c.Frame.Rate <= 0 {
		return fmt.Errorf("%w: frame.rate %d", ErrInvalidConfig, c.Frame.Rate)
	}
	if c.Metrics.FrameRate < 0 {
		return fmt.Errorf("%w: metrics.frame_rate %v", ErrInvalidConfig, c.Metrics.FrameRate)
	}
	return nil
}

func (c ControllerConfig) validate() error {
	checks := []struct {
		ok   bool
		what string
	}{
		{c.MoveSpeed > 0, "move_speed must be positive"},
		{c.SprintSpeed >= 0, "sprint_speed must not be negative"},
		{c.SpeedChangeRate > 0, "speed_change_rate must be positive"},
		{!math.IsNaN(c.Gravity) && !math.IsInf(c.Gravity, 0), "gravity must be finite"},
		{c.FallTimeout >= 0, "fall_timeout must not be negative"},
		{c.GroundedRadius > 0, "grounded_radius must be positive"},
		{c.LookSensitivity >= 0, "look_sensitivity must not be negative"},
		{c.PitchMin >= locomotion.DefaultPitchMin && c.PitchMax <= locomotion.DefaultPitchMax, "pitch limits must stay within [-90, 90]"},
		{c.PitchMin <= c.PitchMax, "pitch_min must not exceed pitch_max"},
		{c.AnimationDampTime >= 0, "animation_damp_time must not be negative"},
		{c.FootstepVolume >= 0, "footstep_volume must not be negative"},
		{c.FootstepWeightThreshold >= 0 && c.FootstepWeightThreshold <= 1, "footstep_weight_threshold must be within [0, 1]"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s", ErrInvalidTunables, ch.what)
		}
	}
	if err := validLayers(c.GroundLayers); err != nil {
		return fmt.Errorf("%w: ground_layers: %v", ErrInvalidTunables, err)
	}
	return nil
}

func validLayers(layers []int) error {
	for _, l := range layers {
		if l < 0 || l > 31 {
			return fmt.Errorf("layer %d outside 0..31", l)
		}
	}
	return nil
}

func LayerMask(layers []int) locomotion.LayerMask {
	var m locomotion.LayerMask
	for _, l := range layers {
		m |= locomotion.LayerBit(l)
	}
	return m
}

func (c *Config) Tunables() locomotion.Tunables {
	cc := c.Controller
	return locomotion.Tunables{
		MoveSpeed:               cc.MoveSpeed,
		SprintSpeed:             cc.SprintSpeed,
		SpeedChangeRate:         cc.SpeedChangeRate,
		Gravity:                 cc.Gravity,
		FallTimeout:             cc.FallTimeout,
		GroundedOffset:          cc.GroundedOffset,
		GroundedRadius:          cc.GroundedRadius,
		GroundLayers:            LayerMask(cc.GroundLayers),
		LookSensitivity:         cc.LookSensitivity,
		PitchMin:                cc.PitchMin,
		PitchMax:                cc.PitchMax,
		AnimationDampTime:       cc.AnimationDampTime,
		FootstepVolume:          cc.FootstepVolume,
		FootstepWeightThreshold: cc.FootstepWeightThreshold,
	}
}
