// Package audio provides the sources and outputs behind the analyser: file
// decoders (WAV, MP3, Ogg Vorbis, FLAC), a synthetic tone, a resampler, and
// two ports.AudioOutput implementations, one on the sound card through oto
// and one muted that only paces the stream in real time.
package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// DefaultBlockFrames is how many frames outputs pull from a stream at once.
const DefaultBlockFrames = 1024

// Downmix averages interleaved frames into mono. It returns dst resliced to
// the number of whole frames in src, growing it if needed.
func Downmix(dst, src []float64, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	frames := len(src) / channels
	if cap(dst) < frames {
		dst = make([]float64, frames)
	}
	dst = dst[:frames]

	switch channels {
	case 1:
		copy(dst, src[:frames])
	case 2:
		for f := range frames {
			dst[f] = (src[2*f] + src[2*f+1]) * 0.5
		}
	default:
		inv := 1 / float64(channels)
		for f := range frames {
			sum := 0.0
			base := f * channels
			for c := range channels {
				sum += src[base+c]
			}
			dst[f] = sum * inv
		}
	}
	return dst
}

// blockReader pulls fixed-size blocks from a stream and mirrors each one,
// downmixed to mono, into the tap.
type blockReader struct {
	stream   ports.PCMStream
	tap      ports.SampleSink
	channels int
	buf      []float64
	mono     []float64
	err      error
}

func newBlockReader(stream ports.PCMStream, tap ports.SampleSink, frames int) *blockReader {
	ch := max(stream.Format().Channels, 1)
	if frames <= 0 {
		frames = DefaultBlockFrames
	}
	return &blockReader{
		stream:   stream,
		tap:      tap,
		channels: ch,
		buf:      make([]float64, frames*ch),
	}
}

// next returns the next block of interleaved samples. Once an error was
// returned every later call returns it again.
func (b *blockReader) next() ([]float64, error) {
	if b.err != nil {
		return nil, b.err
	}
	n, err := b.stream.Read(b.buf)
	n -= n % b.channels
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		b.err = err
		return nil, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		b.err = err
	}
	block := b.buf[:n]
	if b.tap != nil {
		b.mono = Downmix(b.mono, block, b.channels)
		b.tap.WriteSamples(b.mono)
	}
	return block, nil
}

func clampUnit(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case v != v:
		return 0
	}
	return v
}

// Feeder pushes a stream into a sink one block per Step, with no pacing.
// Offline export uses it to keep analysis in step with rendered frames.
type Feeder struct {
	r *blockReader
}

// NewFeeder creates a feeder reading frames frames per step.
func NewFeeder(stream ports.PCMStream, sink ports.SampleSink, frames int) *Feeder {
	return &Feeder{r: newBlockReader(stream, sink, frames)}
}

// errStreamEnded matches both domain.ErrSourceEnded and io.EOF.
var errStreamEnded = fmt.Errorf("%w: %w", domain.ErrSourceEnded, io.EOF)

// Step feeds one block. It returns an error matching domain.ErrSourceEnded
// once the stream is exhausted.
func (f *Feeder) Step() error {
	_, err := f.r.next()
	if errors.Is(err, io.EOF) {
		return errStreamEnded
	}
	return err
}
