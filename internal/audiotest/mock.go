// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic sources for tests. The types satisfy
// audio.Source without importing it, so the audio package can use them too.
package audiotest

import (
	"io"
	"math"
)

// MockSource generates audio from a waveform function.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // Total samples to generate (per channel)
	generated    int // Samples generated so far (per channel)
	waveform     func(sample int, channel int) float32

	Closed bool
}

// NewMockSource creates a new mock audio source.
// totalSamples is the total number of samples per channel to generate.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

// NewChannelIndexSource writes (channel+1)/10 into every channel, which
// makes channel routing easy to check.
func NewChannelIndexSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(_ int, channel int) float32 {
		return float32(channel+1) / 10
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// SliceSource replays a fixed interleaved buffer.
type SliceSource struct {
	Rate     int
	NumChans int
	Samples  []float32
	pos      int
}

func (s *SliceSource) SampleRate() int { return s.Rate }
func (s *SliceSource) Channels() int   { return s.NumChans }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.Samples) {
		return 0, io.EOF
	}

	n := copy(dst[:len(dst)-len(dst)%s.NumChans], s.Samples[s.pos:])
	s.pos += n

	return n, nil
}

// ErrSource fails every read with Err.
type ErrSource struct {
	Rate     int
	NumChans int
	Err      error
}

func (s *ErrSource) SampleRate() int                    { return s.Rate }
func (s *ErrSource) Channels() int                      { return s.NumChans }
func (s *ErrSource) Close() error                       { return nil }
func (s *ErrSource) ReadSamples([]float32) (int, error) { return 0, s.Err }
