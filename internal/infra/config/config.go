// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the appliance configuration.
// Every field has a compiled-in default; the YAML file only overrides.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Navigation NavigationConfig `yaml:"navigation"`
	Audio      AudioConfig      `yaml:"audio"`
	Board      BoardConfig      `yaml:"board"`
	Log        LogConfig        `yaml:"log"`
}

// InputConfig represents button and potentiometer configuration.
type InputConfig struct {
	// Pins is the ordered button pin map (BCM numbering); the position is the button index.
	Pins []int `yaml:"pins" default:"[17,27,22,5,6,13,19,26,21,20,16]" validate:"min=1,max=32,unique,dive,gte=0,lte=255"`
	// VolumeTable maps the 16 potentiometer steps to output volume units.
	VolumeTable []int `yaml:"volume_table" default:"[0,2,4,7,11,16,22,30,40,53,70,92,120,155,200,255]" validate:"len=16,dive,gte=0,lte=255"`
	// AnalogBits is the ADC resolution.
	AnalogBits uint `yaml:"analog_bits" default:"10" validate:"gte=4,lte=16"`
}

// NavigationConfig represents playlist navigation configuration.
type NavigationConfig struct {
	BackButton        int `yaml:"back_button" default:"9" validate:"gte=0"`
	ForwardButton     int `yaml:"forward_button" default:"10" validate:"gte=0,nefield=BackButton"`
	DefaultCollection int `yaml:"default_collection" default:"3" validate:"gte=0,ltfield=CollectionCount"`
	DefaultItem       int `yaml:"default_item" validate:"gte=0"`
	CollectionCount   int `yaml:"collection_count" default:"9" validate:"gte=1,lte=32"`
}

// AudioConfig represents playback engine configuration.
type AudioConfig struct {
	MediaRoot  string `yaml:"media_root" default:"/media/kidbox" validate:"required"`
	Extension  string `yaml:"extension" default:"mp3" validate:"required,excludes=/"`
	SampleRate int    `yaml:"sample_rate" default:"44100" validate:"oneof=22050 32000 44100 48000"`
	ChunkBytes int    `yaml:"chunk_bytes" default:"4608" validate:"gte=512,lte=65536"`

	// Wait after a full round of collections failed to play; 0 disables it
	RetryDelay time.Duration `yaml:"retry_delay" default:"5s" validate:"gte=0"`
}

// BoardConfig represents the pin driver configuration.
type BoardConfig struct {
	Driver   string         `yaml:"driver" default:"rpio" validate:"oneof=rpio memory"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stdout"`
}

// Default returns the compiled-in configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file on top of the compiled-in defaults.
// An empty path loads the defaults only.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	// Defaults go first so explicit zero values in the file survive.
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("KIDBOX_MEDIA_ROOT"); v != "" {
		c.Audio.MediaRoot = v
	}
	if v := os.Getenv("KIDBOX_BOARD"); v != "" {
		c.Board.Driver = v
	}
	if v := os.Getenv("KIDBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateVolumeTable(); err != nil {
		return err
	}

	if err := c.validateButtons(); err != nil {
		return err
	}

	return nil
}

// validateVolumeTable checks that the volume never decreases as the knob turns up.
func (c *Config) validateVolumeTable() error {
	for i := 1; i < len(c.Input.VolumeTable); i++ {
		if c.Input.VolumeTable[i] < c.Input.VolumeTable[i-1] {
			return errors.Newf("volume_table must be non-decreasing: step %d (%d) is below step %d (%d)",
				i, c.Input.VolumeTable[i], i-1, c.Input.VolumeTable[i-1])
		}
	}
	return nil
}

// validateButtons checks that the back and forward buttons exist in the pin map.
func (c *Config) validateButtons() error {
	n := len(c.Input.Pins)
	if c.Navigation.BackButton >= n {
		return errors.Newf("back_button (%d) is out of range: %d buttons configured", c.Navigation.BackButton, n)
	}
	if c.Navigation.ForwardButton >= n {
		return errors.Newf("forward_button (%d) is out of range: %d buttons configured", c.Navigation.ForwardButton, n)
	}
	return nil
}

// IsNavigationButton reports whether the button index is the back or forward button.
func (c *Config) IsNavigationButton(index int) bool {
	return index == c.Navigation.BackButton || index == c.Navigation.ForwardButton
}
