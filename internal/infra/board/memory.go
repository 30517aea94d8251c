package board

import (
	"sync"

	"github.com/osa030/kidbox/internal/domain/button"
)

// MemorySettings configures the in-memory board.
type MemorySettings struct {
	Analog int   `mapstructure:"analog" validate:"gte=0,lte=65535"`
	Held   []int `mapstructure:"held" validate:"dive,gte=0,lte=255"`
}

// Memory is a board whose pin levels are set in software.
// Pins are high (released) unless held.
type Memory struct {
	mu     sync.RWMutex
	low    map[button.Pin]bool
	analog uint16
}

// NewMemory creates an in-memory board.
func NewMemory(settings MemorySettings) *Memory {
	m := &Memory{
		low:    make(map[button.Pin]bool),
		analog: uint16(settings.Analog),
	}
	for _, p := range settings.Held {
		m.low[button.Pin(p)] = true
	}
	return m
}

// Press pulls the pin low.
func (m *Memory) Press(pin button.Pin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.low[pin] = true
}

// Release lets the pin float back high.
func (m *Memory) Release(pin button.Pin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.low, pin)
}

// SetAnalog sets the potentiometer reading.
func (m *Memory) SetAnalog(v uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analog = v
}

// ReadPin returns the pin level.
func (m *Memory) ReadPin(pin button.Pin) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.low[pin]
}

// ReadAnalog returns the potentiometer reading.
func (m *Memory) ReadAnalog() uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.analog
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
