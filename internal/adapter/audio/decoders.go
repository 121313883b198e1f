package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Every stream below owns its file and closes it on Close.

func framesDuration(frames int64, rate int) time.Duration {
	if frames <= 0 || rate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

// wholeFrames trims a destination length to complete frames.
func wholeFrames(n, channels int) int {
	return n - n%channels
}

// --- WAV ---

type wavStream struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *goaudio.IntBuffer
	format   ports.StreamFormat
	depth    int
	duration time.Duration
}

func openWAV(f *os.File) (ports.PCMStream, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("WAV encoding %d: only integer PCM is supported", dec.WavAudioFormat)
	}

	channels := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if channels < 1 || depth < 8 || depth > 32 || depth%8 != 0 {
		return nil, fmt.Errorf("WAV layout %d channels, %d bits: not supported", channels, depth)
	}
	rate := int(dec.SampleRate)
	frames := dec.PCMLen() / int64(channels*depth/8)

	return &wavStream{
		file:     f,
		dec:      dec,
		buf:      &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: channels, SampleRate: rate}},
		format:   ports.StreamFormat{SampleRate: rate, Channels: channels},
		depth:    depth,
		duration: framesDuration(frames, rate),
	}, nil
}

func (s *wavStream) Format() ports.StreamFormat { return s.format }
func (s *wavStream) Duration() time.Duration    { return s.duration }
func (s *wavStream) Close() error               { return s.file.Close() }

func (s *wavStream) Read(dst []float64) (int, error) {
	want := wholeFrames(len(dst), s.format.Channels)
	if want == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, err
	}
	n = wholeFrames(n, s.format.Channels)
	if n == 0 {
		return 0, io.EOF
	}

	scale := 1 / float64(int64(1)<<(s.depth-1))
	for i, v := range s.buf.Data[:n] {
		if s.depth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		dst[i] = clampUnit(float64(v) * scale)
	}
	return n, nil
}

// --- MP3 ---

// go-mp3 always produces 16-bit little-endian stereo.
const mp3Channels = 2

type mp3Stream struct {
	file     *os.File
	dec      *mp3.Decoder
	raw      []byte
	format   ports.StreamFormat
	duration time.Duration
}

func openMP3(f *os.File) (ports.PCMStream, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	rate := dec.SampleRate()
	return &mp3Stream{
		file:     f,
		dec:      dec,
		format:   ports.StreamFormat{SampleRate: rate, Channels: mp3Channels},
		duration: framesDuration(dec.Length()/(2*mp3Channels), rate),
	}, nil
}

func (s *mp3Stream) Format() ports.StreamFormat { return s.format }
func (s *mp3Stream) Duration() time.Duration    { return s.duration }
func (s *mp3Stream) Close() error               { return s.file.Close() }

func (s *mp3Stream) Read(dst []float64) (int, error) {
	want := wholeFrames(len(dst), mp3Channels)
	if want == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.raw) < want*2 {
		s.raw = make([]byte, want*2)
	}
	s.raw = s.raw[:want*2]

	n, err := io.ReadFull(s.dec, s.raw)
	samples := wholeFrames(n/2, mp3Channels)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.raw[2*i:]))
		dst[i] = float64(v) / 32768
	}
	switch {
	case samples > 0:
		return samples, nil
	case err == nil || err == io.ErrUnexpectedEOF:
		return 0, io.EOF
	}
	return 0, err
}

// --- Ogg Vorbis ---

type oggStream struct {
	file     *os.File
	reader   *oggvorbis.Reader
	buf      []float32
	format   ports.StreamFormat
	duration time.Duration
}

func openOGG(f *os.File) (ports.PCMStream, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	rate := reader.SampleRate()
	return &oggStream{
		file:     f,
		reader:   reader,
		format:   ports.StreamFormat{SampleRate: rate, Channels: reader.Channels()},
		duration: framesDuration(reader.Length(), rate),
	}, nil
}

func (s *oggStream) Format() ports.StreamFormat { return s.format }
func (s *oggStream) Duration() time.Duration    { return s.duration }
func (s *oggStream) Close() error               { return s.file.Close() }

func (s *oggStream) Read(dst []float64) (int, error) {
	want := wholeFrames(len(dst), max(s.format.Channels, 1))
	if want == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.buf) < want {
		s.buf = make([]float32, want)
	}
	s.buf = s.buf[:want]

	// Read counts values, not frames.
	n, err := s.reader.Read(s.buf)
	for i, v := range s.buf[:n] {
		dst[i] = clampUnit(float64(v))
	}
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// --- FLAC ---

type flacStream struct {
	file     *os.File
	stream   *flac.Stream
	pending  []float64
	scale    float64
	format   ports.StreamFormat
	duration time.Duration
}

func openFLAC(f *os.File) (ports.PCMStream, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	bps := int(info.BitsPerSample)
	if bps < 4 || bps > 32 {
		return nil, fmt.Errorf("FLAC with %d bits per sample: not supported", bps)
	}
	rate := int(info.SampleRate)
	return &flacStream{
		file:     f,
		stream:   stream,
		scale:    1 / float64(int64(1)<<(bps-1)),
		format:   ports.StreamFormat{SampleRate: rate, Channels: int(info.NChannels)},
		duration: framesDuration(int64(info.NSamples), rate),
	}, nil
}

func (s *flacStream) Format() ports.StreamFormat { return s.format }
func (s *flacStream) Duration() time.Duration    { return s.duration }
func (s *flacStream) Close() error               { return s.file.Close() }

func (s *flacStream) Read(dst []float64) (int, error) {
	ch := max(s.format.Channels, 1)
	want := wholeFrames(len(dst), ch)
	if want == 0 {
		return 0, io.ErrShortBuffer
	}

	for len(s.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err != nil {
			return 0, err
		}
		n := len(frame.Subframes[0].Samples)
		for i := range n {
			for c := range ch {
				s.pending = append(s.pending, float64(frame.Subframes[c].Samples[i])*s.scale)
			}
		}
	}

	n := copy(dst[:want], s.pending)
	s.pending = s.pending[n:]
	return n, nil
}
