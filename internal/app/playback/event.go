package playback

import (
	"github.com/osa030/kidbox/internal/app/input"
	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted  EventType = iota // Item stream opened
	EventTrackEnded                     // Item played to the end
	EventTrackSkipped                   // Item stopped by a button press
	EventTrackFailed                    // Item could not be opened or decoded
	EventVolumeChanged                  // Potentiometer moved to a new step
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackSkipped:
		return "track_skipped"
	case EventTrackFailed:
		return "track_failed"
	case EventVolumeChanged:
		return "volume_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type    EventType
	Request track.Request // Item the event refers to
	Volume  input.Volume  // Volume at the time of the event
	Presses button.Set    // Press events (EventTrackSkipped only)
	Err     error         // Failure cause (EventTrackFailed only)
}
