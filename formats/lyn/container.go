// SPDX-License-Identifier: EPL-2.0

package lyn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/riff"
)

// Data is the decoded data chunk.
type Data struct {
	BlockSize uint32
	// LogicalSizes holds the unpadded length of each channel stream. It is
	// only present for PolicyStored.
	LogicalSizes []uint32
	Body         []byte
}

// header encodes the interleave header for PolicyStored.
func (d Data) header() []byte {
	b := make([]byte, 0, storedHeaderSize(len(d.LogicalSizes)))
	b = binary.LittleEndian.AppendUint32(b, d.BlockSize)
	for _, s := range d.LogicalSizes {
		b = binary.LittleEndian.AppendUint32(b, s)
	}

	return b
}

// Container is a parsed or freshly assembled LyN file.
type Container struct {
	Fmt Fmt
	// Fact is nil when the file carries no fact chunk.
	Fact *Fact
	// Extra is every byte between the fact (or fmt) chunk and the data chunk.
	Extra  []byte
	Data   Data
	Policy Policy
	// Warnings collects non-fatal findings made while parsing.
	Warnings []string
}

// Channels returns the channel count declared by the fmt chunk.
func (c *Container) Channels() int { return int(c.Fmt.Channels) }

// Duration derives the play length from the fact sample count.
func (c *Container) Duration() time.Duration {
	if c.Fact == nil || c.Fmt.SampleRate == 0 {
		return 0
	}

	return time.Duration(c.Fact.SampleCount) * time.Second / time.Duration(c.Fmt.SampleRate)
}

func (c *Container) String() string {
	return fmt.Sprintf("%s, %d channels @ %d Hz, interleave 0x%x (%s), %d body bytes",
		c.Fmt.Codec, c.Fmt.Channels, c.Fmt.SampleRate, c.Data.BlockSize, c.Policy.Kind, len(c.Data.Body))
}

// Parse decodes a container from buf.
//
// Chunks are located by walking the chunk list. When the walk cannot reach
// fmt or data, Parse falls back to a literal tag search and records a
// warning. Unknown codecs are accepted with a fallback layout.
func Parse(buf []byte) (*Container, error) {
	chunks, walkErr := Walk(buf)
	if errors.Is(walkErr, ErrNotRIFF) {
		return nil, walkErr
	}

	c := &Container{}

	fmtChunk, okFmt := lookup(chunks, FmtID)
	dataChunk, okData := lookup(chunks, DataID)
	factChunk, okFact := lookup(chunks, FactID)

	if walkErr != nil || !okFmt || !okData {
		reason := "fmt or data chunk not reached"
		if walkErr != nil {
			reason = walkErr.Error()
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("chunk walk incomplete (%s), falling back to tag search", reason))

		var err error
		if fmtChunk, err = searchChunk(buf, FmtID); err != nil {
			return nil, err
		}
		if dataChunk, err = searchChunk(buf, DataID); err != nil {
			return nil, err
		}
		factChunk, err = searchChunk(buf, FactID)
		okFact = err == nil
	}

	var err error
	if c.Fmt, err = ParseFmt(fmtChunk.Payload); err != nil {
		return nil, err
	}

	extraStart := fmtChunk.End()
	if okFact {
		fact, err := ParseFact(factChunk.Payload)
		if err != nil {
			return nil, err
		}
		c.Fact = &fact
		extraStart = factChunk.End()
	}
	if dataChunk.Offset > extraStart {
		c.Extra = bytes.Clone(buf[extraStart:dataChunk.Offset])
	}

	c.Policy = Interpret(c.Fmt.Codec, c.Fmt.Channels)
	if c.Policy.Warning != "" {
		c.Warnings = append(c.Warnings, c.Policy.Warning)
	}

	if c.Policy.Kind == PolicyStored {
		blockSize, sizes, body, err := ParseDataHeader(dataChunk.Payload, c.Channels())
		if err != nil {
			return nil, err
		}
		c.Policy.BlockSize = blockSize
		c.Data = Data{BlockSize: blockSize, LogicalSizes: sizes, Body: body}
	} else {
		c.Data = Data{BlockSize: c.Policy.BlockSize, Body: dataChunk.Payload}
	}

	if c.Data.BlockSize == 0 {
		return nil, fmt.Errorf("%w: %s policy yields 0", ErrInvalidInterleaveSize, c.Policy.Kind)
	}

	return c, nil
}

func searchChunk(buf []byte, id [4]byte) (Chunk, error) {
	off, err := Find(buf, id)
	if err != nil {
		return Chunk{}, err
	}

	return ReadChunkAt(buf, off)
}

// Streams splits the data body into one stream per channel, padding included.
func (c *Container) Streams() ([][]byte, error) {
	return Deinterleave(c.Data.Body, c.Channels(), c.Data.BlockSize)
}

// OriginateParams describes a container built without a reference file.
type OriginateParams struct {
	// Codec defaults to CodecVorbisV1. Only Vorbis codecs can be originated.
	Codec       Codec
	Channels    int
	SampleRate  uint32
	SampleCount uint32
	BlockSize   uint32
	Streams     [][]byte
}

// Originate assembles a new Vorbis container from encoded channel streams,
// using the reference fmt and fact bytes and no extra chunks.
func Originate(p OriginateParams) (*Container, error) {
	codec := p.Codec
	if codec == 0 {
		codec = CodecVorbisV1
	}
	if !codec.IsVorbis() {
		return nil, fmt.Errorf("%w: cannot originate %s", ErrUnsupportedCodec, codec)
	}
	if len(p.Streams) == 0 {
		return nil, ErrEmptyChannelSet
	}
	if p.Channels < 1 || p.Channels > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannelCount, p.Channels)
	}
	if p.Channels != len(p.Streams) {
		return nil, fmt.Errorf("%w: %d channels, %d streams", ErrChannelCountMismatch, p.Channels, len(p.Streams))
	}

	data, err := buildData(p.Streams, p.BlockSize)
	if err != nil {
		return nil, err
	}

	return &Container{
		Fmt: Fmt{
			Codec:      codec,
			Channels:   uint16(p.Channels),
			SampleRate: p.SampleRate,
			Tail:       bytes.Clone(referenceFmtTail[:]),
		},
		Fact: &Fact{
			SampleCount: p.SampleCount,
			Tail:        bytes.Clone(referenceFactTail[:]),
		},
		Data:   data,
		Policy: Policy{Kind: PolicyStored, BlockSize: p.BlockSize},
	}, nil
}

// Reimport returns a copy of orig carrying new audio. The fmt chunk, the
// extra chunks, the fact tail and the interleave block size are kept as
// they are in orig; only the sample count and the data chunk change.
func Reimport(orig *Container, streams [][]byte, sampleCount uint32) (*Container, error) {
	if !orig.Fmt.Codec.IsVorbis() {
		return nil, fmt.Errorf("%w: reimport needs Vorbis, container is %s", ErrUnsupportedCodec, orig.Fmt.Codec)
	}
	if orig.Fact == nil {
		return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, FactID[:])
	}
	if len(streams) == 0 {
		return nil, ErrEmptyChannelSet
	}
	if len(streams) != orig.Channels() {
		return nil, fmt.Errorf("%w: container has %d channels, got %d streams",
			ErrChannelCountMismatch, orig.Channels(), len(streams))
	}

	data, err := buildData(streams, orig.Data.BlockSize)
	if err != nil {
		return nil, err
	}

	f := orig.Fmt
	f.Tail = bytes.Clone(orig.Fmt.Tail)

	return &Container{
		Fmt:    f,
		Fact:   &Fact{SampleCount: sampleCount, Tail: bytes.Clone(orig.Fact.Tail)},
		Extra:  bytes.Clone(orig.Extra),
		Data:   data,
		Policy: orig.Policy,
	}, nil
}

func buildData(streams [][]byte, blockSize uint32) (Data, error) {
	_, body, err := Interleave(streams, blockSize)
	if err != nil {
		return Data{}, err
	}

	sizes := make([]uint32, len(streams))
	for c, s := range streams {
		sizes[c] = uint32(len(s))
	}

	return Data{BlockSize: blockSize, LogicalSizes: sizes, Body: body}, nil
}

// Bytes serializes the container.
//
// With a stored layout the data chunk declares 8 + header + body, as the
// engine writes it; header-less layouts declare the body alone. Readers in
// this package clamp the declared size to the file either way.
func (c *Container) Bytes() ([]byte, error) {
	var header []byte
	var dataExtra uint64
	if c.Policy.HeaderSize(c.Channels()) > 0 {
		if len(c.Data.LogicalSizes) != c.Channels() {
			return nil, fmt.Errorf("%w: %d logical sizes for %d channels",
				ErrChannelCountMismatch, len(c.Data.LogicalSizes), c.Channels())
		}
		header = c.Data.header()
		dataExtra = chunkHeaderSize
	}

	fmtPayload := c.Fmt.Bytes()
	var factPayload []byte
	if c.Fact != nil {
		factPayload = c.Fact.Bytes()
	}

	dataSize := dataExtra + uint64(len(header)) + uint64(len(c.Data.Body))
	formSize := uint64(4) +
		uint64(chunkHeaderSize+len(fmtPayload)) +
		uint64(len(c.Extra)) +
		uint64(chunkHeaderSize) + uint64(len(header)) + uint64(len(c.Data.Body))
	if c.Fact != nil {
		formSize += uint64(chunkHeaderSize + len(factPayload))
	}
	if formSize > math.MaxUint32 {
		return nil, fmt.Errorf("%w: form of %d bytes does not fit a RIFF size field", ErrMalformedChunk, formSize)
	}

	out := make([]byte, 0, chunkHeaderSize+formSize)
	out = append(out, riff.RiffID[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(formSize))
	out = append(out, riff.WavFormatID[:]...)

	out = appendChunkHeader(out, FmtID, uint32(len(fmtPayload)))
	out = append(out, fmtPayload...)
	if c.Fact != nil {
		out = appendChunkHeader(out, FactID, uint32(len(factPayload)))
		out = append(out, factPayload...)
	}
	out = append(out, c.Extra...)
	out = appendChunkHeader(out, DataID, uint32(dataSize))
	out = append(out, header...)
	out = append(out, c.Data.Body...)

	return out, nil
}

// WriteTo writes the serialized container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	b, err := c.Bytes()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(b)
	if err != nil {
		return int64(n), fmt.Errorf("%w", err)
	}

	return int64(n), nil
}

func appendChunkHeader(b []byte, id [4]byte, size uint32) []byte {
	b = append(b, id[:]...)
	return binary.LittleEndian.AppendUint32(b, size)
}
