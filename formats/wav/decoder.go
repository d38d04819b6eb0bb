// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/lyntool/audio"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

type Decoder struct{}

// Decode accepts integer PCM at 8, 16, 24 or 32 bits with any channel
// count. Chunks other than fmt and data are skipped.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := audio.AsReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if dec.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, dec.Err())
		}
		return nil, ErrNotWavFile
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	default:
		return nil, fmt.Errorf("%w: format tag 0x%04x", ErrUnsupportedWavFormat, dec.WavAudioFormat)
	}

	bias := 0
	switch dec.BitDepth {
	case 8:
		// 8-bit WAV is unsigned
		bias = 128
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	return &audio.IntReaderSource{
		Reader:   dec,
		Rate:     int(dec.SampleRate),
		NumChans: int(dec.NumChans),
		BitDepth: int(dec.BitDepth),
		Bias:     bias,
	}, nil
}
