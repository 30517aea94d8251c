// Package input provides the button and volume sampler.
package input

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/domain/button"
)

// VolumeLevels is the number of discrete volume steps read from the potentiometer.
const VolumeLevels = 16

// volumeLevelBits is log2(VolumeLevels).
const volumeLevelBits = 4

// Volume is a volume value in output device units.
type Volume uint8

// VolumeTable maps a quantized potentiometer step to device units.
// It corrects for the non-linear response of the potentiometer.
type VolumeTable [VolumeLevels]Volume

// Monotonic reports whether the table never decreases.
func (t VolumeTable) Monotonic() bool {
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] {
			return false
		}
	}
	return true
}

// DigitalReader reads the level of a digital input pin.
// true means the pin reads high.
type DigitalReader interface {
	ReadPin(pin button.Pin) bool
}

// AnalogReader reads the volume potentiometer.
type AnalogReader interface {
	ReadAnalog() uint16
}

// Config holds sampler configuration.
type Config struct {
	Pins       []button.Pin // Button pin map, index = button index
	Volume     VolumeTable  // Potentiometer step to device units
	AnalogBits uint         // Resolution of the analog reading (10 for a 0-1023 ADC)
}

// Sampler turns raw pin levels into one-shot press events and a volume value.
// Buttons are active-low: a low level means pressed.
type Sampler struct {
	config  Config
	digital DigitalReader
	analog  AnalogReader

	pressed  button.Set // Buttons seen pressed on a previous sample
	reported button.Set // Buttons already reported during the current press
}

// NewSampler creates a new sampler with all buttons released.
// At most button.MaxButtons pins are sampled.
func NewSampler(config Config, digital DigitalReader, analog AnalogReader) *Sampler {
	if config.AnalogBits < volumeLevelBits {
		config.AnalogBits = volumeLevelBits
	}
	if len(config.Pins) > button.MaxButtons {
		zlog.Warn().Msgf("input: too many buttons, ignoring pins beyond %d: pins=%d", button.MaxButtons, len(config.Pins))
		config.Pins = config.Pins[:button.MaxButtons]
	}
	return &Sampler{
		config:  config,
		digital: digital,
		analog:  analog,
	}
}

// Sample reads every button and the potentiometer once.
// A press is reported on the second consecutive sample that sees the button
// held, and only once per contiguous press.
func (s *Sampler) Sample() (Volume, button.Set) {
	var events button.Set

	for i, pin := range s.config.Pins {
		idx := button.Index(i)

		if s.digital.ReadPin(pin) {
			s.pressed = s.pressed.Remove(idx)
			s.reported = s.reported.Remove(idx)
			continue
		}

		if s.pressed.Has(idx) && !s.reported.Has(idx) {
			events = events.Add(idx)
			s.reported = s.reported.Add(idx)
			zlog.Debug().Msgf("input: button pressed: index=%d pin=%d", idx, pin)
			continue
		}
		s.pressed = s.pressed.Add(idx)
	}

	return s.config.Volume[s.Quantize(s.analog.ReadAnalog())], events
}

// Quantize reduces a raw analog reading to a volume table index.
func (s *Sampler) Quantize(raw uint16) int {
	idx := int(raw >> (s.config.AnalogBits - volumeLevelBits))
	if idx >= VolumeLevels {
		idx = VolumeLevels - 1
	}
	return idx
}

// Pressed returns the buttons currently held.
func (s *Sampler) Pressed() button.Set {
	return s.pressed
}

// Reported returns the buttons already reported during their current press.
func (s *Sampler) Reported() button.Set {
	return s.reported
}
