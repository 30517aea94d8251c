package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/kidbox/internal/domain/button"
)

// fakeBoard holds pin levels; unset pins read high (released).
type fakeBoard struct {
	low    map[button.Pin]bool
	analog uint16
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{low: make(map[button.Pin]bool)}
}

func (b *fakeBoard) ReadPin(pin button.Pin) bool { return !b.low[pin] }
func (b *fakeBoard) ReadAnalog() uint16          { return b.analog }

func (b *fakeBoard) press(pin button.Pin)   { b.low[pin] = true }
func (b *fakeBoard) release(pin button.Pin) { delete(b.low, pin) }

var testPins = []button.Pin{17, 27, 22, 5, 6, 13, 19, 26, 21, 20, 16}

var testTable = VolumeTable{0, 2, 4, 7, 11, 16, 22, 30, 40, 53, 70, 92, 120, 155, 200, 255}

func newTestSampler(b *fakeBoard) *Sampler {
	return NewSampler(Config{Pins: testPins, Volume: testTable, AnalogBits: 10}, b, b)
}

func TestSampler_DebounceReportsOncePerPress(t *testing.T) {
	for _, k := range []int{2, 3, 10, 100} {
		b := newFakeBoard()
		s := newTestSampler(b)
		b.press(testPins[4])

		reportedAt := make([]int, 0)
		for call := 1; call <= k; call++ {
			_, events := s.Sample()
			if events.Has(4) {
				reportedAt = append(reportedAt, call)
			}
			assert.True(t, events.Remove(4).Empty(), "no other button may report")
		}
		assert.Equal(t, []int{2}, reportedAt, "held for %d samples", k)
	}
}

func TestSampler_FirstSampleNeverReports(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)
	b.press(testPins[0])

	_, events := s.Sample()
	assert.True(t, events.Empty())
	assert.True(t, s.Pressed().Has(0))
	assert.False(t, s.Reported().Has(0))
}

func TestSampler_SingleSamplePressIsIgnored(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)

	b.press(testPins[2])
	_, events := s.Sample()
	assert.True(t, events.Empty())

	b.release(testPins[2])
	_, events = s.Sample()
	assert.True(t, events.Empty())
	assert.True(t, s.Pressed().Empty())
}

func TestSampler_ReleaseResetsEligibility(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)
	pin := testPins[7]

	b.press(pin)
	_, events := s.Sample()
	assert.True(t, events.Empty())
	_, events = s.Sample()
	assert.Equal(t, button.Of(7), events)

	b.release(pin)
	_, events = s.Sample()
	assert.True(t, events.Empty())
	assert.False(t, s.Pressed().Has(7))
	assert.False(t, s.Reported().Has(7))

	b.press(pin)
	_, events = s.Sample()
	assert.True(t, events.Empty(), "first sample of the new press must not report")
	_, events = s.Sample()
	assert.Equal(t, button.Of(7), events)
	_, events = s.Sample()
	assert.True(t, events.Empty())
}

func TestSampler_SimultaneousPresses(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)
	b.press(testPins[1])
	b.press(testPins[9])

	s.Sample()
	_, events := s.Sample()
	assert.Equal(t, button.Of(1, 9), events)
}

func TestSampler_ReportedIsSubsetOfPressed(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)

	// Staggered press/release pattern over a few buttons
	script := [][]int{
		{0}, {0, 3}, {0, 3}, {3}, {}, {3, 10}, {10}, {10}, {0, 10}, {},
	}
	for step, held := range script {
		for _, pin := range testPins {
			b.release(pin)
		}
		for _, i := range held {
			b.press(testPins[i])
		}
		s.Sample()
		assert.True(t, s.Pressed().Contains(s.Reported()), "step %d", step)
	}
}

func TestSampler_StuckPinStopsReporting(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)
	b.press(testPins[5])

	count := 0
	for i := 0; i < 1000; i++ {
		if _, events := s.Sample(); events.Has(5) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSampler_Volume(t *testing.T) {
	tests := []struct {
		name     string
		raw      uint16
		expected Volume
	}{
		{name: "minimum", raw: 0, expected: 0},
		{name: "top of first step", raw: 63, expected: 0},
		{name: "second step", raw: 64, expected: 2},
		{name: "middle", raw: 512, expected: 40},
		{name: "maximum", raw: 1023, expected: 255},
		{name: "out of range reading clamps", raw: 4095, expected: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBoard()
			b.analog = tt.raw
			s := newTestSampler(b)

			vol, _ := s.Sample()
			assert.Equal(t, tt.expected, vol)
		})
	}
}

func TestSampler_VolumeMonotonic(t *testing.T) {
	b := newFakeBoard()
	s := newTestSampler(b)

	prev := Volume(0)
	prevIdx := 0
	for raw := 0; raw < 1024; raw++ {
		b.analog = uint16(raw)
		vol, _ := s.Sample()
		idx := s.Quantize(uint16(raw))

		assert.GreaterOrEqual(t, idx, prevIdx)
		assert.GreaterOrEqual(t, int(vol), int(prev), "raw=%d", raw)
		prev, prevIdx = vol, idx
	}
	assert.Equal(t, VolumeLevels-1, prevIdx)
}

func TestSampler_QuantizeResolution(t *testing.T) {
	s := NewSampler(Config{Pins: testPins, Volume: testTable, AnalogBits: 12}, newFakeBoard(), newFakeBoard())
	assert.Equal(t, 0, s.Quantize(255))
	assert.Equal(t, 1, s.Quantize(256))
	assert.Equal(t, 15, s.Quantize(4095))
}

func TestNewSampler_LimitsButtons(t *testing.T) {
	pins := make([]button.Pin, button.MaxButtons+2)
	for i := range pins {
		pins[i] = button.Pin(i)
	}
	b := newFakeBoard()
	s := NewSampler(Config{Pins: pins, Volume: testTable, AnalogBits: 10}, b, b)

	b.press(pins[button.MaxButtons-1])
	b.press(pins[button.MaxButtons])
	s.Sample()
	_, events := s.Sample()
	assert.Equal(t, button.Of(button.MaxButtons-1), events)
}

func TestVolumeTable_Monotonic(t *testing.T) {
	assert.True(t, testTable.Monotonic())
	assert.True(t, VolumeTable{}.Monotonic())

	bad := testTable
	bad[8] = 1
	assert.False(t, bad.Monotonic())
}
