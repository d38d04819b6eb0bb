// SPDX-License-Identifier: EPL-2.0

package lyn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var (
	// FmtID is the tag of the format chunk.
	FmtID = riff.FmtID
	// FactID is the tag of the fact chunk.
	FactID = [4]byte{'f', 'a', 'c', 't'}
	// DataID is the tag of the data chunk.
	DataID = riff.DataFormatID
)

const (
	chunkHeaderSize = 8
	riffHeaderSize  = 12
)

// Chunk is a single tagged block of a container.
// Payload is clamped to the buffer it was read from, so it may be shorter
// than Size for the last chunk of a file.
type Chunk struct {
	ID      [4]byte
	Offset  int // position of the tag in the scanned buffer
	Size    uint32
	Payload []byte
}

// End returns the offset of the first byte after the chunk payload.
func (c Chunk) End() int { return c.Offset + chunkHeaderSize + len(c.Payload) }

// Truncated reports whether the declared size runs past the end of the buffer.
func (c Chunk) Truncated() bool { return uint64(len(c.Payload)) < uint64(c.Size) }

// Find returns the offset of the first literal occurrence of tag in buf.
//
// The search is a plain byte-pattern match over the whole buffer, not a
// chunk walk, so a payload that happens to contain the tag yields a false
// hit. Walk is the primary way to locate chunks; Find only backs it up for
// files whose chunk sizes do not add up.
func Find(buf []byte, tag [4]byte) (int, error) {
	i := bytes.Index(buf, tag[:])
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrChunkNotFound, tag[:])
	}

	return i, nil
}

// ReadChunkHeader returns the declared size stored right after the tag at offset.
func ReadChunkHeader(buf []byte, offset int) (uint32, error) {
	if offset < 0 || len(buf)-offset < chunkHeaderSize {
		return 0, fmt.Errorf("%w: header at 0x%x exceeds buffer of %d bytes", ErrMalformedChunk, offset, len(buf))
	}

	return binary.LittleEndian.Uint32(buf[offset+4 : offset+8]), nil
}

// ReadChunkAt decodes the chunk whose tag starts at offset.
func ReadChunkAt(buf []byte, offset int) (Chunk, error) {
	size, err := ReadChunkHeader(buf, offset)
	if err != nil {
		return Chunk{}, err
	}

	start := offset + chunkHeaderSize
	end := int64(start) + int64(size)
	if end > int64(len(buf)) {
		end = int64(len(buf))
	}

	c := Chunk{Offset: offset, Size: size, Payload: buf[start:end]}
	copy(c.ID[:], buf[offset:offset+4])

	return c, nil
}

// Walk reads the RIFF/WAVE header and then every chunk in file order,
// advancing by each declared size with no alignment padding.
//
// A chunk whose declared size runs past the end of buf ends the walk and
// is returned clamped; LyN data chunks routinely overstate their size.
func Walk(buf []byte) ([]Chunk, error) {
	r := bytes.NewReader(buf)
	p := riff.New(r)

	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRIFF, err)
	}
	if p.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%w: form type %q", ErrNotRIFF, p.Format[:])
	}

	var chunks []Chunk
	for r.Len() >= chunkHeaderSize {
		offset := len(buf) - r.Len()

		id, size, err := p.IDnSize()
		if err != nil {
			return chunks, fmt.Errorf("%w: chunk at 0x%x: %w", ErrMalformedChunk, offset, err)
		}

		c, err := ReadChunkAt(buf, offset)
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)

		if c.Truncated() {
			break
		}
		if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
			return chunks, fmt.Errorf("%w: skipping %q: %w", ErrMalformedChunk, id[:], err)
		}
	}

	return chunks, nil
}

// lookup returns the first chunk with the given tag.
func lookup(chunks []Chunk, id [4]byte) (Chunk, bool) {
	for _, c := range chunks {
		if c.ID == id {
			return c, true
		}
	}

	return Chunk{}, false
}
