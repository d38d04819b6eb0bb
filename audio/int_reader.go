// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntReader is the buffered PCM reader shape shared by the go-audio
// decoders (wav.Decoder, aiff.Decoder).
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntReaderSource adapts an IntReader to Source.
type IntReaderSource struct {
	Reader   IntReader
	Rate     int
	NumChans int
	BitDepth int
	// Bias is subtracted from every sample before scaling; 8-bit WAV data
	// is unsigned and needs 128.
	Bias int
	// Closer is optional.
	Closer io.Closer

	intBuf *goaudio.IntBuffer
}

func (s *IntReaderSource) SampleRate() int { return s.Rate }
func (s *IntReaderSource) Channels() int   { return s.NumChans }

func (s *IntReaderSource) Close() error {
	if s.Closer == nil {
		return nil
	}
	if err := s.Closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *IntReaderSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: &goaudio.Format{NumChannels: s.NumChans, SampleRate: s.Rate},
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.Reader.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	scale := 1 / FullScale(s.BitDepth)
	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.Bias) * scale
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, nil
}

// FullScale returns the magnitude of the most negative sample at bitDepth.
// Unknown depths are treated as 16-bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// AsReadSeeker returns r itself when it can seek, otherwise it buffers r
// in memory. The go-audio decoders need to seek.
func AsReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return bytes.NewReader(data), nil
}
