package audio

import (
	"context"
	"io"
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/kidbox/internal/app/input"
)

// maxVolume is the device unit mapped to full scale.
const maxVolume = 255

// drainPoll is how often the end of the device buffer is checked.
const drainPoll = 10 * time.Millisecond

// stream pipes decoded chunks into a sound device player.
// Writes block while the device buffer is full, which paces the caller.
type stream struct {
	ctx    context.Context
	file   fs.File
	src    pcmSource
	pr     *io.PipeReader
	pw     *io.PipeWriter
	player player
	buf    []byte
	done   bool
}

// Next decodes one chunk and queues it at the given volume.
func (s *stream) Next(volume input.Volume) error {
	if s.done {
		return io.EOF
	}

	s.player.SetVolume(float64(volume) / maxVolume)

	n, err := s.src.Read(s.buf)
	if n > 0 {
		if _, werr := s.pw.Write(s.buf[:n]); werr != nil {
			return errors.Wrap(werr, "audio output closed")
		}
	}
	if errors.Is(err, io.EOF) {
		s.done = true
		return s.drain()
	}
	if err != nil {
		return errors.Wrap(err, "decode failed")
	}
	return nil
}

// drain waits for the player to play out what is still buffered.
func (s *stream) drain() error {
	_ = s.pw.Close()

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for s.player.IsPlaying() {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case <-ticker.C:
		}
	}
	return io.EOF
}

// Close stops the player and closes the item.
func (s *stream) Close() error {
	// Unblock a pending device read before pausing; both hold the player lock.
	_ = s.pw.CloseWithError(io.ErrClosedPipe)
	_ = s.pr.Close()
	s.player.Pause()

	if err := s.file.Close(); err != nil {
		return errors.Wrap(err, "failed to close item")
	}
	return nil
}
