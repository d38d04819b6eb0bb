// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"context"
	"fmt"
	"math"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/lyn"
)

type OriginateOptions struct {
	// Codec defaults to lyn.CodecVorbisV1.
	Codec lyn.Codec
	// BlockSize defaults to lyn.DefaultBlockSize.
	BlockSize uint32
	// SampleRate and Channels default to the source layout.
	SampleRate int
	Channels   int

	Encoder  ChannelEncoder
	WorkDir  string
	Registry *audio.Registry
	Logger   Logger
}

// Originate builds a new Vorbis container around src without a reference
// file. The fmt and fact chunks carry the reference tails.
func Originate(ctx context.Context, src audio.Source, opts OriginateOptions) ([]byte, error) {
	log := loggerOr(opts.Logger)

	if opts.Codec != 0 && !opts.Codec.IsVorbis() {
		return nil, fmt.Errorf("%w: cannot originate %s", lyn.ErrUnsupportedCodec, opts.Codec)
	}

	rate := opts.SampleRate
	if rate <= 0 {
		rate = src.SampleRate()
	}
	if rate <= 0 || uint64(rate) > math.MaxUint32 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}

	channels := opts.Channels
	if channels <= 0 {
		channels = src.Channels()
	}
	if channels < 1 || channels > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", lyn.ErrInvalidChannelCount, channels)
	}

	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = lyn.DefaultBlockSize
	}

	enc := opts.Encoder
	if enc == nil {
		var err error
		if enc, err = defaultEncoder(); err != nil {
			return nil, err
		}
	}

	pcm, err := prepare(src, rate, channels, log)
	if err != nil {
		return nil, err
	}

	streams, err := encodeChannels(ctx, enc, opts.WorkDir, pcm, rate, log)
	if err != nil {
		return nil, err
	}

	c, err := lyn.Originate(lyn.OriginateParams{
		Codec:       opts.Codec,
		Channels:    channels,
		SampleRate:  uint32(rate),
		SampleCount: uint32(len(pcm[0])),
		BlockSize:   blockSize,
		Streams:     streams,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("originated: %s", c)

	return c.Bytes()
}

// OriginateFile decodes inPath by extension and writes a new container to
// outPath.
func OriginateFile(ctx context.Context, inPath, outPath string, opts OriginateOptions) error {
	src, err := openSource(opts.Registry, inPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := Originate(ctx, src, opts)
	if err != nil {
		return err
	}

	return writeFileAtomic(outPath, out)
}
