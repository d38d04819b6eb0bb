// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// DefaultBufSize is the read size used when callers pass a non-positive one.
const DefaultBufSize = 4096

// ReadAll drains src and returns every interleaved sample it produced.
// The buffer size is rounded down to whole frames.
func ReadAll(src Source, bufSize int) ([]float32, error) {
	channels := max(src.Channels(), 1)
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	bufSize = max(bufSize-bufSize%channels, channels)

	var out []float32
	buf := make([]float32, bufSize)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
	}
}

func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// ToInt16 converts a whole float32 buffer.
func ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = Float32ToInt16(s)
	}

	return out
}

// SplitInt16 de-interleaves float samples into one int16 slice per channel.
// A trailing partial frame is dropped.
func SplitInt16(samples []float32, channels int) [][]int16 {
	if channels < 1 {
		return nil
	}

	frames := len(samples) / channels
	out := make([][]int16, channels)
	for c := range out {
		out[c] = make([]int16, frames)
	}
	for f := range frames {
		for c := range channels {
			out[c][f] = Float32ToInt16(samples[f*channels+c])
		}
	}

	return out
}

// MergeFloat32 interleaves per-channel samples. Shorter channels are padded
// with silence to the longest one.
func MergeFloat32(chans [][]float32) ([]float32, error) {
	if len(chans) == 0 {
		return nil, fmt.Errorf("%w: nothing to merge", ErrChannelCountMismatch)
	}

	frames := 0
	for _, c := range chans {
		frames = max(frames, len(c))
	}

	n := len(chans)
	out := make([]float32, frames*n)
	for c, samples := range chans {
		for f, s := range samples {
			out[f*n+c] = s
		}
	}

	return out, nil
}
