package navigator

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/domain/button"
	"github.com/osa030/kidbox/internal/domain/track"
)

// Config holds navigator configuration.
type Config struct {
	Back            button.Index  // Button that steps back one item
	Forward         button.Index  // Button that skips to the next item
	Default         track.Request // Request played after power-on
	CollectionCount int           // Collections on the media, used to wrap error skips
}

// Navigator tracks the current collection and item.
type Navigator struct {
	config  Config
	current track.Request
}

// New creates a navigator positioned at the default request.
func New(config Config) *Navigator {
	if config.CollectionCount < 1 {
		config.CollectionCount = 1
	}
	return &Navigator{
		config:  config,
		current: config.Default,
	}
}

// Current returns the request to play next.
func (n *Navigator) Current() track.Request {
	return n.current
}

// DecideNext applies the outcome of the last playback attempt and the press
// events observed during it, and returns the new current request.
//
// On error, the first item failing skips the whole collection; a later item
// failing restarts the collection. Press events are ignored on error.
// When several buttons were pressed, only the lowest index is applied.
func (n *Navigator) DecideNext(outcome Outcome, events button.Set) track.Request {
	if outcome == OutcomeError {
		if n.current.Item == 0 {
			n.current.Collection = (n.current.Collection + 1) % n.config.CollectionCount
			zlog.Info().Msgf("navigator: first item unplayable, skipping to collection %d", n.current.Collection)
		}
		n.current.Item = 0
		return n.current
	}

	pressed, ok := events.Lowest()
	if !ok {
		n.current.Item++
		return n.current
	}

	switch {
	case pressed == n.config.Back:
		if n.current.Item > 0 {
			n.current.Item--
		}
	case pressed == n.config.Forward:
		n.current.Item++
	case int(pressed) == n.current.Collection:
		n.current.Item++
	default:
		n.current = track.Request{Collection: int(pressed), Item: 0}
		zlog.Info().Msgf("navigator: switched to collection %d", n.current.Collection)
	}

	return n.current
}
