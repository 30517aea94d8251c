package playback

import (
	"context"

	"github.com/osa030/kidbox/internal/app/input"
)

// Engine opens items for playback.
type Engine interface {
	// Open prepares the item identified by id ("<collection>/<item>.<ext>").
	Open(ctx context.Context, id string) (Stream, error)
}

// Stream plays an opened item one chunk at a time.
type Stream interface {
	// Next outputs the next chunk at the given volume.
	// It returns io.EOF once the item has been played to the end.
	Next(volume input.Volume) error
	// Close stops output and releases the item.
	Close() error
}
