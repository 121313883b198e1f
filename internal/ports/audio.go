package ports

import (
	"context"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

// StreamFormat describes decoded PCM.
type StreamFormat struct {
	SampleRate int
	Channels   int
}

// PCMStream is a decoded audio stream.
//
// Read fills dst with interleaved samples in [-1, 1] and returns the number
// of samples written. It returns io.EOF once the stream is exhausted.
// Implementations are not safe for concurrent use.
type PCMStream interface {
	Format() StreamFormat
	Read(dst []float64) (int, error)

	// Duration returns the total length, or zero if unknown.
	Duration() time.Duration

	Close() error
}

// SourceOpener opens audio files and reports what it found.
// Implementations choose the decoder from the file content or extension.
type SourceOpener interface {
	// Open decodes the file at path.
	// Returns domain.ErrUnsupportedFormat (wrapped) for unknown formats.
	Open(path string) (PCMStream, domain.SourceInfo, error)

	// Supports reports whether the extension (with dot, any case) can be opened.
	Supports(ext string) bool
}

// AudioOutput plays a stream and mirrors every played block into a tap.
//
// Play blocks until the stream ends (returning nil), ctx is cancelled
// (returning ctx.Err()) or playback fails. The tap receives mono samples at
// the pace they are played, so the analyser follows what is heard.
type AudioOutput interface {
	Play(ctx context.Context, stream PCMStream, tap SampleSink) error
	Close() error
}
