// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/lyntool/audio"
)

// ErrNotMP3 indicates the stream has no decodable MPEG audio frame.
var ErrNotMP3 = errors.New("not an MP3 stream")

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// go-mp3 always produces interleaved stereo, 16-bit little-endian.
const channels = 2

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// pending holds an odd trailing byte between reads.
	pending []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if bytesNeeded == 0 {
		return 0, nil
	}
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	var err error
	for n < 2 {
		var m int
		m, err = s.dec.Read(s.buf[n:])
		n += m
		if err != nil || m == 0 {
			break
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	if n%2 == 1 && err == nil {
		s.pending = append(s.pending, s.buf[n-1])
	}
	for i := range samples {
		dst[i] = audio.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if samples == 0 {
		return 0, io.EOF
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
	}, nil
}
