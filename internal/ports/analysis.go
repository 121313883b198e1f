// Package ports define the interfaces between the visualizer core and the
// outside world: where analysis data comes from, where pixels go, and what
// drives the frame clock.
package ports

// AnalysisSource supplies byte-quantized analysis buffers, refreshed on every
// query.
//
// Both buffers have exactly BufferLength() entries for as long as the source
// is active. Frequency magnitudes run from the lowest bin (index 0) to the
// highest. Time-domain samples are centred on 128.
//
// Renderers must treat dst as valid only for the current frame and copy any
// data they want to keep.
type AnalysisSource interface {
	// BufferLength returns N, the number of bins and samples per buffer.
	BufferLength() int

	// FrequencyMagnitudes fills dst with the current magnitudes (0..255).
	// Only min(len(dst), N) entries are written.
	FrequencyMagnitudes(dst []byte)

	// TimeDomainSamples fills dst with the current waveform (128 = silence).
	// Only min(len(dst), N) entries are written.
	TimeDomainSamples(dst []byte)
}

// SampleSink accepts mono PCM samples in [-1, 1]. The analyser implements it
// and audio outputs feed it whatever they play.
//
// Thread-safety: WriteSamples may be called from an audio goroutine while
// the render goroutine queries the AnalysisSource side.
type SampleSink interface {
	WriteSamples(samples []float64)
}

// Analyser is an AnalysisSource that is fed through a SampleSink.
type Analyser interface {
	AnalysisSource
	SampleSink

	// SampleRate returns the rate the analyser assumes for incoming samples.
	SampleRate() int

	// Reset drops buffered samples and smoothing history.
	Reset()
}
