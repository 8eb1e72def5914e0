package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
)

// Config holds the configuration for the game
type Config struct {
	Rows         int    `json:"rows" yaml:"rows"`
	Cols         int    `json:"cols" yaml:"cols"`
	MinDimension int    `json:"min_dimension" yaml:"min_dimension"`
	MaxDimension int    `json:"max_dimension" yaml:"max_dimension"`
	Topology     string `json:"topology" yaml:"topology"`

	TargetRate    int               `json:"target_rate" yaml:"target_rate"`
	MinRate       int               `json:"min_rate" yaml:"min_rate"`
	MaxRate       int               `json:"max_rate" yaml:"max_rate"`
	DeviceClass   string            `json:"device_class" yaml:"device_class"`
	FrameInterval time.Duration     `json:"frame_interval" yaml:"frame_interval"`
	Tuning        engine.StepBudget `json:"tuning" yaml:"tuning"`

	RandomDensity float64 `json:"random_density" yaml:"random_density"`
	Seed          int64   `json:"seed" yaml:"seed"`
	Pattern       string  `json:"pattern" yaml:"pattern"`
	PatternDB     string  `json:"pattern_db" yaml:"pattern_db"`

	MaxGenerations        int  `json:"max_generations" yaml:"max_generations"`
	StagnationThreshold   int  `json:"stagnation_threshold" yaml:"stagnation_threshold"`
	AutoPauseOnStagnation bool `json:"auto_pause_on_stagnation" yaml:"auto_pause_on_stagnation"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:                  30,
		Cols:                  60,
		MinDimension:          10,
		MaxDimension:          200,
		Topology:              model.Toroidal.String(),
		TargetRate:            10,
		MinRate:               1,
		MaxRate:               60,
		DeviceClass:           engine.Desktop.String(),
		FrameInterval:         engine.DefaultFrameInterval,
		Tuning:                engine.DefaultStepBudget(),
		RandomDensity:         0.15,
		Seed:                  1,
		MaxGenerations:        1000,
		StagnationThreshold:   5,
		AutoPauseOnStagnation: false,
		LogLevel:              "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Fields absent from the file keep their defaults.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &config); err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal yaml from file: %+v", filename)
		}
	default:
		if err = json.Unmarshal(data, &config); err != nil {
			return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
		}
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid configuration in file: %+v", filename)
	}
	return config, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MinDimension < 1 || c.MaxDimension < c.MinDimension {
		return errors.Errorf("[Validate] dimension bounds [%d, %d] are invalid", c.MinDimension, c.MaxDimension)
	}
	if c.Rows < c.MinDimension || c.Rows > c.MaxDimension {
		return errors.Errorf("[Validate] rows %d outside [%d, %d]", c.Rows, c.MinDimension, c.MaxDimension)
	}
	if c.Cols < c.MinDimension || c.Cols > c.MaxDimension {
		return errors.Errorf("[Validate] cols %d outside [%d, %d]", c.Cols, c.MinDimension, c.MaxDimension)
	}
	if c.MinRate < 1 || c.MaxRate < c.MinRate {
		return errors.Errorf("[Validate] rate bounds [%d, %d] are invalid", c.MinRate, c.MaxRate)
	}
	if c.TargetRate < c.MinRate || c.TargetRate > c.MaxRate {
		return errors.Errorf("[Validate] target rate %d outside [%d, %d]", c.TargetRate, c.MinRate, c.MaxRate)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Errorf("[Validate] random density %v outside [0, 1]", c.RandomDensity)
	}
	if c.FrameInterval < 0 {
		return errors.Errorf("[Validate] frame interval %v is negative", c.FrameInterval)
	}
	if _, err := model.ParseTopology(c.Topology); err != nil {
		return errors.Wrap(err, "[Validate] bad topology")
	}
	if _, err := engine.ParseDeviceClass(c.DeviceClass); err != nil {
		return errors.Wrap(err, "[Validate] bad device class")
	}
	return nil
}

// SchedulerConfig converts the rate and tuning settings for engine.NewScheduler.
func (c Config) SchedulerConfig() engine.Config {
	device, _ := engine.ParseDeviceClass(c.DeviceClass)
	return engine.Config{
		TargetRate: c.TargetRate,
		MinRate:    c.MinRate,
		MaxRate:    c.MaxRate,
		Device:     device,
		Budget:     c.Tuning,
	}
}

// GridOptions converts the grid settings for model.NewGrid.
func (c Config) GridOptions() []model.GridOption {
	topology, err := model.ParseTopology(c.Topology)
	if err != nil {
		topology = model.Toroidal
	}
	return []model.GridOption{
		model.WithTopology(topology),
		model.WithDimensionBounds(c.MinDimension, c.MaxDimension),
	}
}
