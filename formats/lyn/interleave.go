// SPDX-License-Identifier: EPL-2.0

package lyn

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Interleave pads every stream with zeros to a common number of blocks and
// weaves them round-robin: block 0 of channels 0..N-1, then block 1, and
// so on. The returned header is the block size followed by the unpadded
// length of each stream.
func Interleave(streams [][]byte, blockSize uint32) (header, body []byte, err error) {
	if len(streams) == 0 {
		return nil, nil, ErrEmptyChannelSet
	}
	if blockSize == 0 {
		return nil, nil, ErrInvalidInterleaveSize
	}

	bs := int(blockSize)
	blocks := 0
	header = make([]byte, 0, storedHeaderSize(len(streams)))
	header = binary.LittleEndian.AppendUint32(header, blockSize)
	for c, s := range streams {
		if uint64(len(s)) > math.MaxUint32 {
			return nil, nil, fmt.Errorf("%w: channel %d is %d bytes", ErrMalformedChunk, c, len(s))
		}
		header = binary.LittleEndian.AppendUint32(header, uint32(len(s)))
		blocks = max(blocks, (len(s)+bs-1)/bs)
	}

	stride := bs * len(streams)
	// make zero-fills, so short channels are padded for free.
	body = make([]byte, blocks*stride)

	var wg sync.WaitGroup
	for c, s := range streams {
		wg.Go(func() {
			for k := 0; k*bs < len(s); k++ {
				copy(body[k*stride+c*bs:], s[k*bs:min((k+1)*bs, len(s))])
			}
		})
	}
	wg.Wait()

	return header, body, nil
}

// Deinterleave splits an interleaved body back into one stream per channel.
// Channel c receives every block whose slot within its round equals c.
//
// The streams keep their padding; see TrimToLogical.
func Deinterleave(body []byte, channels int, blockSize uint32) ([][]byte, error) {
	if blockSize == 0 {
		return nil, ErrInvalidInterleaveSize
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannelCount, channels)
	}

	bs := int(blockSize)
	stride := bs * channels
	full, rest := len(body)/stride, len(body)%stride

	// The block size comes from the file, so allocations are sized by what
	// the body actually holds for each channel.
	streams := make([][]byte, channels)
	for c := range channels {
		out := make([]byte, 0, full*bs+min(max(rest-c*bs, 0), bs))
		for pos := c * bs; pos < len(body); pos += stride {
			out = append(out, body[pos:min(pos+bs, len(body))]...)
		}
		streams[c] = out
	}

	return streams, nil
}

// ParseDataHeader splits a stored-policy data payload into its block size,
// per-channel logical sizes and interleaved body.
func ParseDataHeader(payload []byte, channels int) (uint32, []uint32, []byte, error) {
	need := storedHeaderSize(channels)
	if len(payload) < need {
		return 0, nil, nil, fmt.Errorf("%w: data header needs %d bytes for %d channels, have %d",
			ErrMalformedChunk, need, channels, len(payload))
	}

	blockSize := binary.LittleEndian.Uint32(payload[0:4])
	sizes := make([]uint32, channels)
	for c := range sizes {
		off := 4 + 4*c
		sizes[c] = binary.LittleEndian.Uint32(payload[off : off+4])
	}

	return blockSize, sizes, payload[need:], nil
}

// TrimToLogical cuts each stream to its recorded logical size. Streams
// without a recorded size, or shorter than it, are returned unchanged.
func TrimToLogical(streams [][]byte, sizes []uint32) [][]byte {
	out := make([][]byte, len(streams))
	for c, s := range streams {
		if c < len(sizes) && uint64(sizes[c]) < uint64(len(s)) {
			s = s[:sizes[c]]
		}
		out[c] = s
	}

	return out
}
