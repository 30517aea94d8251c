// Package button provides the Button domain types and the button bit-set.
package button

import (
	"math/bits"
	"strconv"
	"strings"
)

// MaxButtons is the number of buttons a Set can hold.
const MaxButtons = 32

// Index identifies a button by its position in the configured pin map.
type Index int

// Pin is a physical pin identifier (BCM numbering on the Raspberry Pi board).
type Pin uint8

// Button binds a button index to the pin it is wired to.
type Button struct {
	Index Index // Position in the pin map
	Pin   Pin   // Physical pin, active-low
}

// FromPins builds the button list for an ordered pin map.
func FromPins(pins []Pin) []Button {
	buttons := make([]Button, len(pins))
	for i, p := range pins {
		buttons[i] = Button{Index: Index(i), Pin: p}
	}
	return buttons
}

// Set is a bit-set over button indices.
type Set uint32

// Of returns a set containing the given indices.
func Of(indices ...Index) Set {
	var s Set
	for _, i := range indices {
		s = s.Add(i)
	}
	return s
}

// Add returns s with i set.
func (s Set) Add(i Index) Set {
	return s | 1<<uint(i)
}

// Remove returns s with i cleared.
func (s Set) Remove(i Index) Set {
	return s &^ (1 << uint(i))
}

// Has reports whether i is in s.
func (s Set) Has(i Index) bool {
	return s&(1<<uint(i)) != 0
}

// Empty reports whether no button is set.
func (s Set) Empty() bool {
	return s == 0
}

// Contains reports whether every member of o is also in s.
func (s Set) Contains(o Set) bool {
	return s&o == o
}

// Lowest returns the lowest set index.
func (s Set) Lowest() (Index, bool) {
	if s == 0 {
		return 0, false
	}
	return Index(bits.TrailingZeros32(uint32(s))), true
}

// Indices returns the set members in ascending order.
func (s Set) Indices() []Index {
	out := make([]Index, 0, bits.OnesCount32(uint32(s)))
	for rest := s; rest != 0; {
		i, _ := rest.Lowest()
		out = append(out, i)
		rest = rest.Remove(i)
	}
	return out
}

// String returns the members as "{1,4}".
func (s Set) String() string {
	parts := make([]string, 0)
	for _, i := range s.Indices() {
		parts = append(parts, strconv.Itoa(int(i)))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
