// Package navigator decides which item to request after each playback attempt.
package navigator

// Outcome represents how a playback attempt ended.
type Outcome int

const (
	OutcomeFinished Outcome = iota // Item played to the end or was stopped by a press
	OutcomeError                   // Item could not be opened or decoded
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}
