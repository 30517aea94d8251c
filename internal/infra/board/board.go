// Package board provides the digital and analog pin drivers behind the input sampler.
package board

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/infra/config"
)

// Board reads button pins and the volume potentiometer.
type Board interface {
	// ReadPin returns the pin level; true means high (released for an active-low button).
	ReadPin(pin button.Pin) bool
	// ReadAnalog returns the raw potentiometer reading.
	ReadAnalog() uint16
	// Close releases the hardware.
	Close() error
}

// Open creates the board driver selected in the configuration.
// Button pins are configured as pulled-up inputs.
func Open(cfg config.BoardConfig, pins []button.Pin) (Board, error) {
	zlog.Debug().Msgf("opening board: driver=%s settings=%+v", cfg.Driver, cfg.Settings)

	switch cfg.Driver {
	case "rpio":
		var settings RPIOSettings
		if err := decodeSettings(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "invalid rpio settings")
		}
		b, err := OpenRPIO(settings, pins)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open rpio board")
		}
		return b, nil

	case "memory":
		var settings MemorySettings
		if err := decodeSettings(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "invalid memory settings")
		}
		return NewMemory(settings), nil

	default:
		return nil, errors.Newf("unsupported board driver: %s", cfg.Driver)
	}
}

// decodeSettings decodes driver settings, applies defaults and validates them.
func decodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
