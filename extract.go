// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/lyn"
	"github.com/ik5/lyntool/formats/vorbis"
	"github.com/ik5/lyntool/formats/wav"
)

type ExtractOptions struct {
	// NoTrim keeps the zero padding the interleaver added to each channel.
	NoTrim bool
	// Decoder decodes one Vorbis channel stream; defaults to vorbis.Decoder.
	Decoder audio.Decoder
	// RawDir, when set, receives the per-channel streams in ExtractFile.
	RawDir string
	Logger Logger
}

// Extraction is the result of taking a container apart.
type Extraction struct {
	Container *lyn.Container
	// Streams holds one encoded stream per channel.
	Streams [][]byte
	// PCM is interleaved 16-bit audio at the container sample rate. It is
	// nil when the codec cannot be decoded.
	PCM      []int16
	Warnings []string
}

func (e *Extraction) SampleRate() int { return int(e.Container.Fmt.SampleRate) }
func (e *Extraction) Channels() int   { return e.Container.Channels() }

// Frames is the number of decoded sample frames.
func (e *Extraction) Frames() int {
	if e.Channels() == 0 {
		return 0
	}

	return len(e.PCM) / e.Channels()
}

// StreamExt is the file extension suited to the channel streams.
func (e *Extraction) StreamExt() string {
	if e.Container.Fmt.Codec.IsVorbis() {
		return "ogg"
	}

	return "bin"
}

// Extract parses buf, splits the body into channel streams and decodes
// them. Vorbis channels are decoded separately and merged; PCM bodies are
// read as 16-bit little-endian samples. Any other codec yields streams only.
func Extract(ctx context.Context, buf []byte, opts ExtractOptions) (*Extraction, error) {
	log := loggerOr(opts.Logger)

	c, err := lyn.Parse(buf)
	if err != nil {
		return nil, err
	}

	ex := &Extraction{Container: c, Warnings: append([]string(nil), c.Warnings...)}
	log.Printf("%s", c)

	streams, err := c.Streams()
	if err != nil {
		return nil, err
	}
	if !opts.NoTrim {
		streams = lyn.TrimToLogical(streams, c.Data.LogicalSizes)
	}
	ex.Streams = streams

	switch {
	case c.Fmt.Codec.IsVorbis():
		dec := opts.Decoder
		if dec == nil {
			dec = vorbis.Decoder{}
		}
		chans, err := decodeChannels(ctx, dec, streams, ex.SampleRate(), log)
		if err != nil {
			return nil, err
		}
		merged, err := audio.MergeFloat32(chans)
		if err != nil {
			return nil, err
		}
		ex.PCM = audio.ToInt16(merged)
	case c.Fmt.Codec == lyn.CodecPCM:
		ex.PCM = mergeInt16(pcmChannels(streams))
	default:
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s cannot be decoded, only the raw channel streams are available", c.Fmt.Codec))
	}

	for _, w := range ex.Warnings {
		log.Printf("warning: %s", w)
	}

	return ex, nil
}

func decodeChannels(ctx context.Context, dec audio.Decoder, streams [][]byte, rate int, log Logger) ([][]float32, error) {
	chans := make([][]float32, len(streams))
	errs := make([]error, len(streams))

	var wg sync.WaitGroup
	for ch, stream := range streams {
		wg.Go(func() {
			if err := ctx.Err(); err != nil {
				errs[ch] = err
				return
			}
			chans[ch], errs[ch] = decodeChannel(dec, ch, stream, rate, log)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return chans, nil
}

func decodeChannel(dec audio.Decoder, ch int, stream []byte, rate int, log Logger) ([]float32, error) {
	src, err := dec.Decode(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("decoding channel %d: %w", ch, err)
	}
	defer src.Close()

	var s audio.Source = src
	if s.Channels() != 1 {
		log.Printf("channel %d: stream has %d channels, downmixing", ch, s.Channels())
		s = audio.NewMonoMixer(s)
	}
	if s.SampleRate() != rate {
		log.Printf("channel %d: resampling %d Hz -> %d Hz", ch, s.SampleRate(), rate)
		s = audio.NewResampler(s, rate)
	}

	samples, err := audio.ReadAll(s, audio.DefaultBufSize)
	if err != nil {
		return nil, fmt.Errorf("decoding channel %d: %w", ch, err)
	}

	return samples, nil
}

// pcmChannels reads each stream as mono 16-bit little-endian samples. A
// trailing odd byte is ignored.
func pcmChannels(streams [][]byte) [][]int16 {
	chans := make([][]int16, len(streams))
	for ch, s := range streams {
		out := make([]int16, len(s)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(s[2*i:]))
		}
		chans[ch] = out
	}

	return chans
}

// mergeInt16 interleaves channels, padding short ones with silence.
func mergeInt16(chans [][]int16) []int16 {
	frames := 0
	for _, c := range chans {
		frames = max(frames, len(c))
	}

	n := len(chans)
	out := make([]int16, frames*n)
	for c, samples := range chans {
		for f, s := range samples {
			out[f*n+c] = s
		}
	}

	return out
}

// ExtractFile extracts inPath and writes the decoded audio to outPath as a
// 16-bit WAV. Channel streams are written as channel_<n>.<ext> into
// opts.RawDir when it is set, or next to outPath when the codec cannot be
// decoded. Streams only land once the WAV is in place, and streams placed
// next to outPath never replace existing files.
func ExtractFile(ctx context.Context, inPath, outPath string, opts ExtractOptions) (*Extraction, error) {
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	ex, err := Extract(ctx, buf, opts)
	if err != nil {
		return nil, err
	}

	var raw stagedFiles
	defer raw.discard()

	rawDir, keepExisting := opts.RawDir, false
	if ex.PCM == nil && rawDir == "" {
		rawDir, keepExisting = filepath.Dir(outPath), true
	}
	if rawDir != "" {
		if err := stageStreams(&raw, rawDir, ex, keepExisting); err != nil {
			return nil, err
		}
	}

	if ex.PCM != nil {
		meta := &wav.Metadata{
			Software: "lyntool",
			Comments: fmt.Sprintf("extracted from %s (%s)", filepath.Base(inPath), ex.Container.Fmt.Codec),
		}
		err = writeAtomic(outPath, func(f *os.File) error {
			return wav.WritePCM16(f, ex.SampleRate(), ex.Channels(), ex.PCM, meta)
		})
		if err != nil {
			return nil, err
		}
	}

	if err := raw.commit(); err != nil {
		return nil, err
	}

	return ex, nil
}

func stageStreams(raw *stagedFiles, dir string, ex *Extraction, keepExisting bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w", err)
	}

	for ch, s := range ex.Streams {
		name := filepath.Join(dir, fmt.Sprintf("channel_%d.%s", ch, ex.StreamExt()))
		if keepExisting {
			if _, err := os.Lstat(name); err == nil {
				return fmt.Errorf("%w: %s (pass a raw directory to choose another place)", os.ErrExist, name)
			}
		}
		if err := raw.add(name, s); err != nil {
			return err
		}
	}

	return nil
}
