// SPDX-License-Identifier: EPL-2.0

package lyn

import "errors"

var (
	// ErrNotRIFF indicates the buffer does not start with a RIFF/WAVE header.
	ErrNotRIFF = errors.New("not a RIFF/WAVE container")

	// ErrChunkNotFound indicates a required chunk tag is absent.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrMalformedChunk indicates a chunk header or payload is too short.
	ErrMalformedChunk = errors.New("malformed chunk")

	// ErrUnsupportedCodec indicates a Vorbis-only operation was requested on another codec.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrInvalidInterleaveSize indicates an interleave block size of zero.
	ErrInvalidInterleaveSize = errors.New("invalid interleave size")

	// ErrChannelCountMismatch indicates the number of streams differs from the container's channel count.
	ErrChannelCountMismatch = errors.New("channel count mismatch")

	// ErrEmptyChannelSet indicates no streams were supplied for interleaving.
	ErrEmptyChannelSet = errors.New("empty channel set")

	// ErrInvalidChannelCount indicates a channel count below one.
	ErrInvalidChannelCount = errors.New("invalid channel count")
)
