package audio

import (
	"errors"
	"io"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Resampler converts an interleaved stream to another sample rate by linear
// interpolation, keeping the channel count.
type Resampler struct {
	src      ports.PCMStream
	rate     int
	channels int
	ratio    float64 // source frames per output frame

	in   []float64
	have int     // frames buffered in in
	pos  float64 // read position in frames, relative to in[0]
	eof  bool
}

var _ ports.PCMStream = (*Resampler)(nil)

// Resample returns src converted to rate. A stream already at rate, or a
// non-positive rate, is returned unchanged.
func Resample(src ports.PCMStream, rate int) ports.PCMStream {
	f := src.Format()
	if rate <= 0 || f.SampleRate == rate || f.SampleRate <= 0 {
		return src
	}
	return NewResampler(src, rate)
}

// NewResampler wraps src. Closing the resampler closes src.
func NewResampler(src ports.PCMStream, rate int) *Resampler {
	f := src.Format()
	ch := max(f.Channels, 1)
	return &Resampler{
		src:      src,
		rate:     rate,
		channels: ch,
		ratio:    float64(f.SampleRate) / float64(rate),
		in:       make([]float64, 4096*ch),
	}
}

// Format reports the converted rate.
func (r *Resampler) Format() ports.StreamFormat {
	return ports.StreamFormat{SampleRate: r.rate, Channels: r.channels}
}

// Duration is unchanged by resampling.
func (r *Resampler) Duration() time.Duration { return r.src.Duration() }

// Close closes the source stream.
func (r *Resampler) Close() error { return r.src.Close() }

func (r *Resampler) Read(dst []float64) (int, error) {
	ch := r.channels
	frames := len(dst) / ch
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n < frames {
		i := int(r.pos)
		if i+1 >= r.have {
			if err := r.fill(); err != nil {
				if n > 0 {
					return n * ch, nil
				}
				return 0, err
			}
			continue
		}
		frac := r.pos - float64(i)
		a := r.in[i*ch : (i+1)*ch]
		b := r.in[(i+1)*ch : (i+2)*ch]
		out := dst[n*ch : (n+1)*ch]
		for c := range out {
			out[c] = a[c] + (b[c]-a[c])*frac
		}
		n++
		r.pos += r.ratio
	}
	return n * ch, nil
}

// fill drops the frames behind the read position and reads more.
func (r *Resampler) fill() error {
	if r.eof {
		return io.EOF
	}
	ch := r.channels
	drop := min(int(r.pos), r.have)
	copy(r.in, r.in[drop*ch:r.have*ch])
	r.have -= drop
	r.pos -= float64(drop)

	m, err := r.src.Read(r.in[r.have*ch:])
	r.have += m / ch
	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
		if m == 0 {
			return io.EOF
		}
	case err != nil:
		return err
	case m == 0:
		return io.ErrNoProgress
	}
	return nil
}
