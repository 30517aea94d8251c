package board

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/osa030/kidbox/internal/domain/button"
)

// RPIOSettings configures the Raspberry Pi board.
// The potentiometer is read through an MCP3008 10-bit ADC on SPI0.
type RPIOSettings struct {
	ADCChannel int `mapstructure:"adc_channel" validate:"gte=0,lte=7"`
	ChipSelect int `mapstructure:"spi_chip_select" validate:"gte=0,lte=1"`
	SpeedHz    int `mapstructure:"spi_speed_hz" default:"1000000" validate:"gte=10000,lte=3600000"`
}

// RPIO drives buttons through the BCM GPIO registers.
type RPIO struct {
	settings RPIOSettings
	tx       [3]byte
	once     sync.Once
}

// OpenRPIO maps the GPIO and SPI registers and configures the button pins.
func OpenRPIO(settings RPIOSettings, pins []button.Pin) (*RPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "failed to map gpio registers")
	}

	for _, p := range pins {
		pin := rpio.Pin(p)
		pin.Input()
		pin.PullUp()
	}

	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		_ = rpio.Close()
		return nil, errors.Wrap(err, "failed to start spi0")
	}
	rpio.SpiSpeed(settings.SpeedHz)
	rpio.SpiChipSelect(uint8(settings.ChipSelect))

	zlog.Info().Msgf("rpio board ready: buttons=%d adc_channel=%d", len(pins), settings.ADCChannel)
	return &RPIO{settings: settings}, nil
}

// ReadPin returns the pin level.
func (b *RPIO) ReadPin(pin button.Pin) bool {
	return rpio.Pin(pin).Read() == rpio.High
}

// ReadAnalog performs one MCP3008 single-ended conversion.
func (b *RPIO) ReadAnalog() uint16 {
	b.tx = mcp3008Request(b.settings.ADCChannel)
	rpio.SpiExchange(b.tx[:])
	return mcp3008Value(b.tx)
}

// Close releases SPI and unmaps the registers.
func (b *RPIO) Close() error {
	var err error
	b.once.Do(func() {
		rpio.SpiEnd(rpio.Spi0)
		err = rpio.Close()
	})
	return err
}

// mcp3008Request builds a single-ended conversion request for channel ch:
// start bit, then SGL=1 and the channel in the high nibble of the second byte.
func mcp3008Request(ch int) [3]byte {
	return [3]byte{0x01, byte(0x80 | (ch&0x07)<<4), 0x00}
}

// mcp3008Value extracts the 10-bit result from the response frame.
func mcp3008Value(rx [3]byte) uint16 {
	return uint16(rx[1]&0x03)<<8 | uint16(rx[2])
}
