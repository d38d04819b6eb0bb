// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"context"
	"fmt"
	"os"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/lyn"
)

type ReimportOptions struct {
	// Encoder defaults to oggenc2/oggenc found on PATH.
	Encoder ChannelEncoder
	// WorkDir is where scratch workspaces are created; empty means the
	// system temp directory.
	WorkDir string
	// Registry picks the replacement decoder in ReimportFile. Nil means
	// DefaultRegistry.
	Registry *audio.Registry
	Logger   Logger
}

// Reimport replaces the audio of a Vorbis LyN container. The replacement is
// resampled and channel-mapped to the original layout, each channel is
// encoded separately and the result is interleaved with the original block
// size. Everything except the sample count and the data chunk is copied
// from original.
func Reimport(ctx context.Context, original []byte, replacement audio.Source, opts ReimportOptions) ([]byte, error) {
	log := loggerOr(opts.Logger)

	orig, err := lyn.Parse(original)
	if err != nil {
		return nil, fmt.Errorf("parsing original: %w", err)
	}
	for _, w := range orig.Warnings {
		log.Printf("warning: %s", w)
	}

	// fail before any decoding or encoding work
	if !orig.Fmt.Codec.IsVorbis() {
		return nil, fmt.Errorf("%w: reimport needs Vorbis, original is %s", lyn.ErrUnsupportedCodec, orig.Fmt.Codec)
	}
	if orig.Fact == nil {
		return nil, fmt.Errorf("%w: original has no fact chunk", lyn.ErrChunkNotFound)
	}

	enc := opts.Encoder
	if enc == nil {
		if enc, err = defaultEncoder(); err != nil {
			return nil, err
		}
	}

	log.Printf("original: %s", orig)

	pcm, err := prepare(replacement, int(orig.Fmt.SampleRate), orig.Channels(), log)
	if err != nil {
		return nil, err
	}

	streams, err := encodeChannels(ctx, enc, opts.WorkDir, pcm, int(orig.Fmt.SampleRate), log)
	if err != nil {
		return nil, err
	}

	out, err := lyn.Reimport(orig, streams, uint32(len(pcm[0])))
	if err != nil {
		return nil, err
	}

	return out.Bytes()
}

// ReimportFile reads originalPath, decodes replacementPath by extension and
// writes the new container to outPath.
func ReimportFile(ctx context.Context, originalPath, replacementPath, outPath string, opts ReimportOptions) error {
	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	src, err := openSource(opts.Registry, replacementPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := Reimport(ctx, original, src, opts)
	if err != nil {
		return err
	}

	return writeFileAtomic(outPath, out)
}
