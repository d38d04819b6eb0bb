// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer downmixes any channel layout to mono by averaging.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) Close() error    { return closeSource(m.src) }

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	m.tmp = grow(m.tmp, len(dst)*channels)
	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / channels

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		inv := float32(1.0) / float32(channels)
		for f := range frames {
			sum := float32(0)
			for _, s := range m.tmp[f*channels : (f+1)*channels] {
				sum += s
			}
			dst[f] = sum * inv
		}
	}

	return frames, err
}

// Fanout copies a mono source into every channel of an n-channel stream.
type Fanout struct {
	src      Source
	channels int
	tmp      []float32
}

// NewFanout returns a Fanout; src must be mono.
func NewFanout(src Source, channels int) (*Fanout, error) {
	if src.Channels() != 1 {
		return nil, fmt.Errorf("%w: fanout needs mono input, got %d channels", ErrChannelCountMismatch, src.Channels())
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d output channels", ErrChannelCountMismatch, channels)
	}

	return &Fanout{src: src, channels: channels}, nil
}

func (f *Fanout) SampleRate() int { return f.src.SampleRate() }
func (f *Fanout) Channels() int   { return f.channels }
func (f *Fanout) Close() error    { return closeSource(f.src) }

func (f *Fanout) ReadSamples(dst []float32) (int, error) {
	if len(dst)%f.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	f.tmp = grow(f.tmp, len(dst)/f.channels)
	n, err := f.src.ReadSamples(f.tmp)
	for i, s := range f.tmp[:n] {
		frame := dst[i*f.channels : (i+1)*f.channels]
		for c := range frame {
			frame[c] = s
		}
	}

	return n * f.channels, err
}

// MatchChannels adapts src to the given channel count. Equal layouts pass
// through, mono targets are downmixed and mono sources are fanned out.
// Any other combination is rejected with ErrChannelCountMismatch.
func MatchChannels(src Source, channels int) (Source, error) {
	have := src.Channels()

	switch {
	case have == channels:
		return src, nil
	case channels == 1:
		return NewMonoMixer(src), nil
	case have == 1:
		return NewFanout(src, channels)
	default:
		return nil, fmt.Errorf("%w: cannot map %d channels onto %d", ErrChannelCountMismatch, have, channels)
	}
}

func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}

	return buf[:n]
}

func closeSource(src Source) error {
	if err := src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
