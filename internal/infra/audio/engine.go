// Package audio provides the playback engine: items are decoded from the media
// card and streamed chunk by chunk to the sound device.
package audio

import (
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/kidbox/internal/app/playback"
	"github.com/osa030/kidbox/internal/domain/track"
)

// Errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrSampleRate        = errors.New("sample rate mismatch")
)

// Config holds engine configuration.
type Config struct {
	MediaRoot  string // Directory holding one sub-directory per collection
	SampleRate int    // Output sample rate; items must match it
	ChunkBytes int    // PCM bytes written per chunk
}

// player is the part of *oto.Player the engine uses.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
}

// decodeFunc opens a PCM source over an item file.
type decodeFunc func(f fs.File) (pcmSource, error)

// Engine opens items from the media directory.
type Engine struct {
	media      fs.FS
	sampleRate int
	chunkBytes int
	decoders   map[string]decodeFunc
	newPlayer  func(r io.Reader) player
}

// NewEngine creates the sound device context and an engine reading from cfg.MediaRoot.
// Output is 16-bit signed little-endian stereo.
func NewEngine(cfg Config) (*Engine, error) {
	if _, err := os.Stat(cfg.MediaRoot); err != nil {
		return nil, errors.Wrapf(err, "media root %s is not accessible", cfg.MediaRoot)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create audio context")
	}
	<-ready

	zlog.Info().Msgf("audio engine ready: media_root=%s sample_rate=%d", cfg.MediaRoot, cfg.SampleRate)

	return newEngine(os.DirFS(cfg.MediaRoot), cfg, func(r io.Reader) player {
		return otoCtx.NewPlayer(r)
	}), nil
}

func newEngine(media fs.FS, cfg Config, newPlayer func(r io.Reader) player) *Engine {
	chunk := cfg.ChunkBytes - cfg.ChunkBytes%frameBytes
	if chunk <= 0 {
		chunk = 4608
	}
	return &Engine{
		media:      media,
		sampleRate: cfg.SampleRate,
		chunkBytes: chunk,
		decoders: map[string]decodeFunc{
			"mp3": decodeMP3,
			"wav": decodeWAV,
		},
		newPlayer: newPlayer,
	}
}

// Open opens the item and starts the sound device on it.
func (e *Engine) Open(ctx context.Context, id string) (playback.Stream, error) {
	name, ext, err := itemPath(id)
	if err != nil {
		return nil, err
	}

	decode, ok := e.decoders[ext]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "item %s", id)
	}

	f, err := e.media.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open item %s", id)
	}

	src, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "failed to decode item %s", id)
	}
	if src.SampleRate() != e.sampleRate {
		_ = f.Close()
		return nil, errors.Wrapf(ErrSampleRate, "item %s is %d Hz, output is %d Hz", id, src.SampleRate(), e.sampleRate)
	}

	pr, pw := io.Pipe()
	p := e.newPlayer(pr)
	// Play fills the device buffer from the pipe before returning, so it
	// cannot run on the goroutine that writes the chunks.
	go p.Play()

	return &stream{
		ctx:    ctx,
		file:   f,
		src:    src,
		pr:     pr,
		pw:     pw,
		player: p,
		buf:    make([]byte, e.chunkBytes),
	}, nil
}

// itemPath validates an item id and returns its slash-separated path within
// the media FS and the lower-cased extension used to pick a decoder.
// The path keeps the extension as given; media file names are matched exactly.
func itemPath(id string) (string, string, error) {
	req, ext, err := track.ParseID(id)
	if err != nil {
		return "", "", err
	}
	name := req.ID(ext)
	if strings.ContainsAny(ext, `/\`) || !fs.ValidPath(name) {
		return "", "", errors.Newf("invalid item id %q", id)
	}
	return name, strings.ToLower(ext), nil
}
