// Package playback provides the control loop that plays items and feeds the navigator.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // Between items
	StatePlaying              // An item stream is open
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
