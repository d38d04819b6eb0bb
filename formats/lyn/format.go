// SPDX-License-Identifier: EPL-2.0

package lyn

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Codec is the format tag stored in the first two bytes of the fmt chunk.
type Codec uint16

const (
	CodecPCM      Codec = 0x0001
	CodecVorbisV1 Codec = 0x3156 // "V1"
	CodecVorbisV2 Codec = 0x3157 // "W1"
)

// IsVorbis reports whether the codec stores interleaved Ogg Vorbis streams.
func (c Codec) IsVorbis() bool { return c == CodecVorbisV1 || c == CodecVorbisV2 }

func (c Codec) String() string {
	switch c {
	case CodecPCM:
		return "pcm"
	case CodecVorbisV1:
		return "vorbis-v1"
	case CodecVorbisV2:
		return "vorbis-v2"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint16(c))
	}
}

// Opaque reference bytes taken from files shipped with the engine. They are
// used only when a container is built without an original to copy from.
// Their bit-level meaning is unconfirmed: the fmt tail sits where a byte
// rate and block align would be in plain WAVE, but the values do not match
// the audio they describe.
var (
	referenceFmtTail  = [...]byte{0xf4, 0x01, 0x00, 0x04, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00}
	referenceFactTail = [...]byte{'L', 'y', 'N', ' ', 0x03, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00}
)

const (
	fmtFixedSize  = 8 // codec + channels + sample rate
	factFixedSize = 4 // sample count

	// DefaultBlockSize is the interleave block size the engine expects for
	// newly built Vorbis containers.
	DefaultBlockSize uint32 = 0x401F4

	// FallbackBlockSize is assumed for codecs whose layout is unknown.
	FallbackBlockSize uint32 = 0x8000
)

// Fmt is the decoded fmt chunk. Tail holds everything after the sample rate
// and is written back verbatim.
type Fmt struct {
	Codec      Codec
	Channels   uint16
	SampleRate uint32
	Tail       []byte
}

// ParseFmt decodes a fmt chunk payload.
func ParseFmt(payload []byte) (Fmt, error) {
	if len(payload) < fmtFixedSize {
		return Fmt{}, fmt.Errorf("%w: fmt payload is %d bytes, need %d", ErrMalformedChunk, len(payload), fmtFixedSize)
	}

	f := Fmt{
		Codec:      Codec(binary.LittleEndian.Uint16(payload[0:2])),
		Channels:   binary.LittleEndian.Uint16(payload[2:4]),
		SampleRate: binary.LittleEndian.Uint32(payload[4:8]),
		Tail:       bytes.Clone(payload[fmtFixedSize:]),
	}
	if f.Channels == 0 {
		return Fmt{}, fmt.Errorf("%w: fmt declares 0 channels", ErrInvalidChannelCount)
	}

	return f, nil
}

// Bytes encodes the fmt payload (without the chunk header).
func (f Fmt) Bytes() []byte {
	b := make([]byte, 0, fmtFixedSize+len(f.Tail))
	b = binary.LittleEndian.AppendUint16(b, uint16(f.Codec))
	b = binary.LittleEndian.AppendUint16(b, f.Channels)
	b = binary.LittleEndian.AppendUint32(b, f.SampleRate)

	return append(b, f.Tail...)
}

// Fact is the decoded fact chunk. Only SampleCount is meaningful; Tail is a
// format/version marker copied verbatim.
type Fact struct {
	SampleCount uint32
	Tail        []byte
}

// ParseFact decodes a fact chunk payload.
func ParseFact(payload []byte) (Fact, error) {
	if len(payload) < factFixedSize {
		return Fact{}, fmt.Errorf("%w: fact payload is %d bytes, need %d", ErrMalformedChunk, len(payload), factFixedSize)
	}

	return Fact{
		SampleCount: binary.LittleEndian.Uint32(payload[0:4]),
		Tail:        bytes.Clone(payload[factFixedSize:]),
	}, nil
}

// Bytes encodes the fact payload (without the chunk header).
func (f Fact) Bytes() []byte {
	b := make([]byte, 0, factFixedSize+len(f.Tail))
	b = binary.LittleEndian.AppendUint32(b, f.SampleCount)

	return append(b, f.Tail...)
}

// PolicyKind tells where the interleave block size comes from.
type PolicyKind int

const (
	// PolicyStored reads the block size and per-channel sizes from the data header.
	PolicyStored PolicyKind = iota
	// PolicyDerived uses one 16-bit sample frame as the block size.
	PolicyDerived
	// PolicyFallback guesses FallbackBlockSize for an unknown codec.
	PolicyFallback
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyStored:
		return "stored"
	case PolicyDerived:
		return "derived"
	case PolicyFallback:
		return "fallback"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// Policy is the interleave layout of a codec.
type Policy struct {
	Kind PolicyKind
	// BlockSize is zero for PolicyStored until the data header is read.
	BlockSize uint32
	// Warning is set when the layout is a guess.
	Warning string
}

// HeaderSize is the number of data payload bytes that precede the interleaved body.
func (p Policy) HeaderSize(channels int) int {
	if p.Kind != PolicyStored {
		return 0
	}

	return storedHeaderSize(channels)
}

// storedHeaderSize is the block size field plus one logical size per channel.
func storedHeaderSize(channels int) int { return 4 + 4*channels }

// Interpret returns the interleave policy for a codec. Unknown codecs are
// not an error: they get a best-effort layout and a warning.
func Interpret(codec Codec, channels uint16) Policy {
	switch {
	case codec.IsVorbis():
		return Policy{Kind: PolicyStored}
	case codec == CodecPCM:
		return Policy{Kind: PolicyDerived, BlockSize: 2 * uint32(channels)}
	default:
		return Policy{
			Kind:      PolicyFallback,
			BlockSize: FallbackBlockSize,
			Warning: fmt.Sprintf("unhandled codec 0x%04x: assuming interleave size 0x%x with no data header",
				uint16(codec), FallbackBlockSize),
		}
	}
}
