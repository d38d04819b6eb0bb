// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/lyntool/audio"
	"github.com/mewkiz/flac"
)

// blockReader yields one decoded block at a time: one sample slice per
// channel, all of the same length.
type blockReader interface {
	NextBlock() ([][]int32, error)
	Close() error
}

type streamBlocks struct {
	stream *flac.Stream
}

func (b streamBlocks) NextBlock() ([][]int32, error) {
	frame, err := b.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	n := int(frame.BlockSize)
	block := make([][]int32, len(frame.Subframes))
	for ch, sub := range frame.Subframes {
		if len(sub.Samples) < n {
			return nil, fmt.Errorf("%w: channel %d has %d of %d samples", ErrShortSubframe, ch, len(sub.Samples), n)
		}
		block[ch] = sub.Samples[:n]
	}

	return block, nil
}

func (b streamBlocks) Close() error { return b.stream.Close() }

type source struct {
	blocks     blockReader
	sampleRate int
	channels   int
	scale      float32

	// pending block and the next frame to emit from it
	block [][]int32
	pos   int
	done  bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) Close() error {
	if err := s.blocks.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	n := 0
	for n+s.channels <= len(dst) {
		if s.block == nil || s.pos >= len(s.block[0]) {
			if s.done {
				break
			}
			block, err := s.blocks.NextBlock()
			if err == io.EOF {
				s.done = true
				break
			}
			if err != nil {
				return n, fmt.Errorf("%w", err)
			}
			if len(block) != s.channels {
				return n, fmt.Errorf("%w: block has %d channels, stream %d", audio.ErrChannelCountMismatch, len(block), s.channels)
			}
			s.block, s.pos = block, 0
			continue
		}

		for ch := range s.channels {
			dst[n+ch] = float32(s.block[ch][s.pos]) * s.scale
		}
		s.pos++
		n += s.channels
	}

	if n == 0 && s.done {
		return 0, io.EOF
	}

	return n, nil
}

type Decoder struct{}

// Decode reads the stream info block up front; audio frames are decoded
// on demand.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFLAC, err)
	}

	src, err := newSource(streamBlocks{stream: stream}, int(stream.Info.SampleRate),
		int(stream.Info.NChannels), int(stream.Info.BitsPerSample))
	if err != nil {
		stream.Close()
		return nil, err
	}

	return src, nil
}

func newSource(blocks blockReader, rate, channels, bitDepth int) (*source, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrNotFLAC, channels)
	}

	return &source{
		blocks:     blocks,
		sampleRate: rate,
		channels:   channels,
		scale:      1 / audio.FullScale(bitDepth),
	}, nil
}
