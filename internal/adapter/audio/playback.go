package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Device format. Streams are resampled and remapped to it.
const (
	DeviceSampleRate = 44100
	deviceChannels   = 2
	devicePoll       = 50 * time.Millisecond
)

// oto allows one context per process.
var (
	deviceCtx     *oto.Context
	deviceOnce    sync.Once
	deviceInitErr error
)

func deviceContext() (*oto.Context, error) {
	deviceOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   DeviceSampleRate,
			ChannelCount: deviceChannels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   40 * time.Millisecond,
		}
		var ready chan struct{}
		deviceCtx, ready, deviceInitErr = oto.NewContext(op)
		if deviceInitErr == nil {
			<-ready
		}
	})
	return deviceCtx, deviceInitErr
}

// Playback plays streams on the default sound card. The tap is fed as oto
// pulls data, which runs ahead of the speaker by the device buffer only.
//
// Thread-safety: one Play at a time; Close may be called concurrently.
type Playback struct {
	logger *slog.Logger
	ctx    *oto.Context

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ ports.AudioOutput = (*Playback)(nil)

// NewPlayback opens the audio device.
func NewPlayback(logger *slog.Logger) (*Playback, error) {
	c, err := deviceContext()
	if err != nil {
		return nil, domain.NewSourceError("init", "", "audio device unavailable", err)
	}
	return &Playback{logger: logger, ctx: c, done: make(chan struct{})}, nil
}

// Play blocks until the stream has been heard, ctx is cancelled or the
// output is closed. It does not close the stream.
func (p *Playback) Play(ctx context.Context, stream ports.PCMStream, tap ports.SampleSink) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrNotInitialized
	}
	done := p.done
	p.mu.Unlock()

	r := newDeviceReader(Resample(stream, DeviceSampleRate), tap)
	player := p.ctx.NewPlayer(r)
	defer player.Pause()
	player.Play()

	ticker := time.NewTicker(devicePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return domain.ErrNotInitialized
		case <-ticker.C:
		}
		if player.IsPlaying() {
			continue
		}
		if err := r.Err(); err != nil && !errors.Is(err, io.EOF) {
			return domain.NewSourceError("play", "", "stream read failed", err)
		}
		p.logger.Debug("device playback finished")
		return nil
	}
}

// Close stops any running Play. The process-wide device context stays open.
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	return nil
}

// deviceReader adapts a float stream to the signed 16-bit stereo bytes oto
// reads, tapping every block on the way.
type deviceReader struct {
	blocks  *blockReader
	pending []byte

	mu  sync.Mutex
	err error
}

func newDeviceReader(stream ports.PCMStream, tap ports.SampleSink) *deviceReader {
	return &deviceReader{blocks: newBlockReader(stream, tap, DefaultBlockFrames)}
}

func (d *deviceReader) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		block, err := d.blocks.next()
		if err != nil {
			d.mu.Lock()
			d.err = err
			d.mu.Unlock()
			return 0, io.EOF
		}
		d.pending = d.encode(block)
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

// Err returns the error that ended the stream, io.EOF on a clean end.
func (d *deviceReader) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// encode converts a block to device frames. Mono is duplicated to both
// channels; extra channels beyond the first two are dropped.
func (d *deviceReader) encode(block []float64) []byte {
	ch := d.blocks.channels
	frames := len(block) / ch
	out := make([]byte, frames*deviceChannels*2)
	for f := range frames {
		l := block[f*ch]
		r := l
		if ch > 1 {
			r = block[f*ch+1]
		}
		binary.LittleEndian.PutUint16(out[f*4:], uint16(toInt16(l)))
		binary.LittleEndian.PutUint16(out[f*4+2:], uint16(toInt16(r)))
	}
	return out
}

func toInt16(v float64) int16 {
	return int16(clampUnit(v) * 32767)
}
