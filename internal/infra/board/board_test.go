package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/infra/config"
)

func TestOpen_Memory(t *testing.T) {
	b, err := Open(config.BoardConfig{
		Driver: "memory",
		Settings: map[string]any{
			"analog": 700,
			"held":   []any{17},
		},
	}, []button.Pin{17, 27})
	require.NoError(t, err)
	defer b.Close()

	assert.False(t, b.ReadPin(17), "held pin reads low")
	assert.True(t, b.ReadPin(27), "released pin reads high")
	assert.Equal(t, uint16(700), b.ReadAnalog())
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.BoardConfig
		errMsg string
	}{
		{
			name:   "unknown driver",
			cfg:    config.BoardConfig{Driver: "arduino"},
			errMsg: "unsupported board driver",
		},
		{
			name: "rpio adc channel out of range",
			cfg: config.BoardConfig{
				Driver:   "rpio",
				Settings: map[string]any{"adc_channel": 9},
			},
			errMsg: "invalid rpio settings",
		},
		{
			name: "rpio unknown setting",
			cfg: config.BoardConfig{
				Driver:   "rpio",
				Settings: map[string]any{"i2c_bus": 1},
			},
			errMsg: "invalid rpio settings",
		},
		{
			name: "memory analog out of range",
			cfg: config.BoardConfig{
				Driver:   "memory",
				Settings: map[string]any{"analog": -1},
			},
			errMsg: "invalid memory settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.cfg, []button.Pin{17})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMemory_PressRelease(t *testing.T) {
	m := NewMemory(MemorySettings{})

	assert.True(t, m.ReadPin(5))
	m.Press(5)
	assert.False(t, m.ReadPin(5))
	m.Release(5)
	assert.True(t, m.ReadPin(5))

	m.SetAnalog(1023)
	assert.Equal(t, uint16(1023), m.ReadAnalog())
	assert.NoError(t, m.Close())
}

func TestMCP3008Frames(t *testing.T) {
	assert.Equal(t, [3]byte{0x01, 0x80, 0x00}, mcp3008Request(0))
	assert.Equal(t, [3]byte{0x01, 0xB0, 0x00}, mcp3008Request(3))
	assert.Equal(t, [3]byte{0x01, 0xF0, 0x00}, mcp3008Request(7))

	tests := []struct {
		name     string
		rx       [3]byte
		expected uint16
	}{
		{name: "zero", rx: [3]byte{0xFF, 0xF8, 0x00}, expected: 0},
		{name: "full scale", rx: [3]byte{0x00, 0x03, 0xFF}, expected: 1023},
		{name: "mid scale", rx: [3]byte{0x00, 0x02, 0x00}, expected: 512},
		{name: "ignores undefined high bits", rx: [3]byte{0xFF, 0xFD, 0x2A}, expected: 0x12A},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mcp3008Value(tt.rx))
		})
	}
}
