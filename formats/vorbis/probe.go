// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"

	"github.com/jfreymuth/oggvorbis"
)

// Info summarizes an encoded stream without decoding its audio.
type Info struct {
	SampleRate     int
	Channels       int
	NominalBitrate int
	// Length is the stream length in frames, taken from the last page.
	Length   int64
	Vendor   string
	Comments []string
}

// Probe reads the headers of an in-memory Ogg Vorbis stream. Length is
// left at zero when the last page cannot be located, which happens when a
// stream still carries a long run of interleave padding.
func Probe(stream []byte) (Info, error) {
	length, format, err := oggvorbis.GetLength(bytes.NewReader(stream))
	if err != nil {
		length = 0
		if format, err = oggvorbis.GetFormat(bytes.NewReader(stream)); err != nil {
			return Info{}, fmt.Errorf("%w: %w", ErrNotVorbis, err)
		}
	}

	comments, err := oggvorbis.GetCommentHeader(bytes.NewReader(stream))
	if err != nil {
		return Info{}, fmt.Errorf("%w: comment header: %w", ErrNotVorbis, err)
	}

	return Info{
		SampleRate:     format.SampleRate,
		Channels:       format.Channels,
		NominalBitrate: format.Bitrate.Nominal,
		Length:         length,
		Vendor:         comments.Vendor,
		Comments:       comments.Comments,
	}, nil
}
