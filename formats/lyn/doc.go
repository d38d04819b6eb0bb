// SPDX-License-Identifier: EPL-2.0

// Package lyn reads and writes LyN sound containers (.sns / .lwav).
//
// A LyN container is a RIFF/WAVE envelope around per-channel compressed
// audio. Each channel is encoded on its own, cut into fixed-size blocks and
// woven round-robin into the data chunk:
//
//	RIFF <size> WAVE
//	  fmt  <size> codec, channels, rate, opaque tail
//	  fact <size> sample count, opaque tail
//	  ...  opaque chunks, preserved as raw bytes
//	  data <size> [block size][logical size per channel] interleaved blocks
//
// Unlike strict RIFF, chunks are not padded to even sizes.
//
// # Reading
//
//	c, err := lyn.Parse(buf)
//	if err != nil {
//	    return err
//	}
//	for _, w := range c.Warnings {
//	    log.Println(w)
//	}
//	streams, err := c.Streams()
//
// Streams are returned with their interleave padding. Use TrimToLogical to
// cut them to the recorded per-channel sizes when the consumer does not
// tolerate trailing zero bytes.
//
// # Writing
//
// Originate builds a brand new container using reference header bytes.
// Reimport swaps the audio of an existing container while keeping its fmt
// chunk, extra chunks and interleave block size untouched:
//
//	out, err := lyn.Reimport(orig, newStreams, newSampleCount)
//	if err != nil {
//	    return err
//	}
//	data, err := out.Bytes()
//
// All integers are little-endian.
package lyn
