package audio

import (
	"encoding/binary"
	"io"
	"io/fs"

	"github.com/cockroachdb/errors"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	channels   = 2
	frameBytes = channels * 2 // 16-bit stereo
)

// pcmSource produces 16-bit signed little-endian stereo PCM.
type pcmSource interface {
	Read(p []byte) (int, error)
	SampleRate() int
}

// decodeMP3 decodes MPEG audio; go-mp3 always outputs 16-bit stereo.
func decodeMP3(f fs.File) (pcmSource, error) {
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mp3 stream")
	}
	return d, nil
}

// wavSource converts 16-bit mono or stereo WAV data to stereo PCM.
type wavSource struct {
	d      *wav.Decoder
	ints   *goaudio.IntBuffer
	stereo bool
	rate   int
}

// decodeWAV decodes 16-bit PCM WAV files.
func decodeWAV(f fs.File) (pcmSource, error) {
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		return nil, errors.New("wav decoding needs a seekable file")
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	if d.BitDepth != 16 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "wav bit depth %d", d.BitDepth)
	}
	if d.NumChans != 1 && d.NumChans != 2 {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "wav with %d channels", d.NumChans)
	}

	return &wavSource{
		d: d,
		ints: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: int(d.NumChans), SampleRate: int(d.SampleRate)},
			SourceBitDepth: 16,
		},
		stereo: d.NumChans == 2,
		rate:   int(d.SampleRate),
	}, nil
}

func (w *wavSource) SampleRate() int {
	return w.rate
}

// Read fills p with whole stereo frames.
func (w *wavSource) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	samples := frames
	if w.stereo {
		samples *= 2
	}
	if cap(w.ints.Data) < samples {
		w.ints.Data = make([]int, samples)
	}
	w.ints.Data = w.ints.Data[:samples]

	n, err := w.d.PCMBuffer(w.ints)
	if err != nil {
		return 0, errors.Wrap(err, "wav read failed")
	}
	if n == 0 {
		return 0, io.EOF
	}

	out := 0
	for i := 0; i < n; i++ {
		v := uint16(int16(w.ints.Data[i]))
		binary.LittleEndian.PutUint16(p[out:], v)
		out += 2
		if !w.stereo {
			binary.LittleEndian.PutUint16(p[out:], v)
			out += 2
		}
	}
	// Drop a trailing half frame from a truncated stereo file
	out -= out % frameBytes
	return out, nil
}
