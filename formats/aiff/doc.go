// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit PCM are accepted at any rate and channel count.
// Samples are normalized to float32 in [-1.0, 1.0]:
//
//	src, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(src, 0)
//
// go-audio needs to seek; readers that cannot seek are buffered in memory.
package aiff
