package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Paced is a muted output. It consumes a stream in real time, block by
// block, and feeds the tap exactly as a sound card would, without producing
// sound. It runs headless and in tests, and stands in when no audio device
// is available.
//
// Thread-safety: Play may run concurrently with Close.
type Paced struct {
	logger *slog.Logger
	frames int

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ ports.AudioOutput = (*Paced)(nil)

// NewPaced creates a muted output pulling blockFrames frames per step.
// Non-positive values select DefaultBlockFrames.
func NewPaced(logger *slog.Logger, blockFrames int) *Paced {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	return &Paced{
		logger: logger,
		frames: blockFrames,
		done:   make(chan struct{}),
	}
}

// Play blocks until the stream ends, ctx is cancelled or the output is closed.
func (p *Paced) Play(ctx context.Context, stream ports.PCMStream, tap ports.SampleSink) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrNotInitialized
	}
	done := p.done
	p.mu.Unlock()

	rate := stream.Format().SampleRate
	if rate <= 0 {
		return domain.NewSourceError("play", "", "stream has no sample rate", nil)
	}
	interval := time.Duration(float64(p.frames) / float64(rate) * float64(time.Second))
	reader := newBlockReader(stream, tap, p.frames)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	blocks := 0
	for {
		if _, err := reader.next(); err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Debug("paced playback finished", slog.Int("blocks", blocks))
				return nil
			}
			return domain.NewSourceError("play", "", "stream read failed", err)
		}
		blocks++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return domain.ErrNotInitialized
		case <-ticker.C:
		}
	}
}

// Close stops any running Play. It is idempotent.
func (p *Paced) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	return nil
}
