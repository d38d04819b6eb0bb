// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Metadata is written as a LIST/INFO chunk after the samples.
type Metadata = gowav.Metadata

// writeChunkFrames bounds the int buffer handed to the encoder per call.
const writeChunkFrames = 8192

// WritePCM16 writes interleaved 16-bit PCM. meta may be nil.
//
// w must be seekable: the RIFF and data sizes are patched in once all
// samples are written.
func WritePCM16(w io.WriteSeeker, sampleRate, channels int, samples []int16, meta *Metadata) error {
	if channels < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidChannelCount, channels)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples do not divide into %d channels", ErrInvalidChannelCount, len(samples), channels)
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM)
	enc.Metadata = meta

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}

	step := writeChunkFrames * channels
	for start := 0; start < len(samples) || start == 0; start += step {
		chunk := samples[start:min(start+step, len(samples))]

		buf.Data = buf.Data[:0]
		for _, s := range chunk {
			buf.Data = append(buf.Data, int(s))
		}
		// an empty first write still emits the headers
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
