package visualizer

import "math"

// bassFraction is the share of the spectrum treated as bass.
const bassFraction = 0.1

// Normalize maps a byte magnitude to [0, 1].
func Normalize(v byte) float64 {
	return float64(v) / 255
}

// SampleBin reads data[index] normalized to [0, 1].
// With smoothing the bin is averaged with its neighbours using 1:2:1 weights;
// neighbours outside the buffer are replaced by the nearest valid bin.
// Out of range indexes are clamped and an empty buffer yields 0.
func SampleBin(data []byte, index int, smoothing bool) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	index = clampIndex(index, n)
	if !smoothing {
		return Normalize(data[index])
	}
	prev := data[max(0, index-1)]
	next := data[min(n-1, index+1)]
	sum := int(prev) + 2*int(data[index]) + int(next)
	return float64(sum) / (4 * 255)
}

// BassLevel is the mean magnitude of the lowest 10% of bins, normalized.
// At least one bin is always used.
func BassLevel(freq []byte) float64 {
	if len(freq) == 0 {
		return 0
	}
	end := max(1, int(math.Floor(float64(len(freq))*bassFraction)))
	return meanRange(freq, 0, end) / 255
}

// BandLevels returns the normalized means of the bass (0-10%), mids (10-50%)
// and treble (50-100%) regions of data. Empty regions report 0.
func BandLevels(data []byte) (bass, mids, treble float64) {
	n := len(data)
	if n == 0 {
		return 0, 0, 0
	}
	bassEnd := int(math.Floor(float64(n) * bassFraction))
	midsEnd := int(math.Floor(float64(n) * 0.5))
	return meanRange(data, 0, bassEnd) / 255,
		meanRange(data, bassEnd, midsEnd) / 255,
		meanRange(data, midsEnd, n) / 255
}

// MeanLevel is the mean of all bins, normalized.
func MeanLevel(data []byte) float64 {
	return meanRange(data, 0, len(data)) / 255
}

// Peak returns the largest value in data.
func Peak(data []byte) byte {
	var peak byte
	for _, v := range data {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// HasSignal reports whether any frequency bin is non-zero.
func HasSignal(freq []byte) bool {
	for _, v := range freq {
		if v > 0 {
			return true
		}
	}
	return false
}

// SignalEnergy is the mean absolute deviation of time-domain samples from
// the 128 baseline.
func SignalEnergy(timeDomain []byte) float64 {
	if len(timeDomain) == 0 {
		return 0
	}
	var sum int
	for _, v := range timeDomain {
		d := int(v) - 128
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(timeDomain))
}

// Amplitude maps a time-domain sample to [-1, 1).
func Amplitude(sample byte) float64 {
	return (float64(sample) - 128) / 128
}

func meanRange(data []byte, start, end int) float64 {
	start = max(0, start)
	end = min(len(data), end)
	if end <= start {
		return 0
	}
	var sum int
	for _, v := range data[start:end] {
		sum += int(v)
	}
	return float64(sum) / float64(end-start)
}

func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}
