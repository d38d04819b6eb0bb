// SPDX-License-Identifier: EPL-2.0

// Command lyntool extracts, reimports and originates LyN (.sns/.lwav)
// audio containers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ik5/lyntool"
	"github.com/ik5/lyntool/formats/lyn"
	"github.com/ik5/lyntool/formats/vorbis"
	"github.com/ik5/lyntool/internal/exttool"
)

const encoderEnv = "LYNTOOL_OGGENC"

var errUsage = errors.New("usage error")

const usageText = `usage:
  lyntool extract   [-raw dir] [-notrim] [-v] <in.sns> <out.wav>
  lyntool reimport  [-q 6] [-oggenc bin] [-v] <orig.sns> <new.audio> <out.sns>
  lyntool originate [-q 6] [-block 0x401F4] [-codec v1] [-oggenc bin] [-v] <in.audio> <out.sns>
  lyntool info      <in.sns>

The Vorbis encoder is looked up as -oggenc, then $LYNTOOL_OGGENC, then
oggenc2 and oggenc on PATH.
`

func main() {
	logger := log.New(os.Stderr, "lyntool: ", 0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, logger)
	switch {
	case errors.Is(err, errUsage):
		logger.Print(err)
		usage(os.Stderr)
		stop()
		os.Exit(2)
	case err != nil:
		logger.Print(err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "extract":
		return runExtract(ctx, rest, logger)
	case "reimport":
		return runReimport(ctx, rest, logger)
	case "originate":
		return runOriginate(ctx, rest, logger)
	case "info":
		return runInfo(rest, out)
	case "help", "-h", "-help", "--help":
		usage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageText)
	fmt.Fprintf(w, "\nInput formats for reimport and originate: %s\n",
		strings.Join(lyntool.DefaultRegistry().Formats(), ", "))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUsage, fs.Name(), err)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", errUsage, fs.Name(), positional, fs.NArg())
	}

	return fs.Args(), nil
}

// warningsOnly drops progress lines unless -v is given.
type warningsOnly struct {
	l *log.Logger
}

func (w warningsOnly) Printf(format string, args ...any) {
	if strings.HasPrefix(format, "warning") {
		w.l.Printf(format, args...)
	}
}

func pipelineLogger(l *log.Logger, verbose bool) lyntool.Logger {
	if verbose {
		return l
	}

	return warningsOnly{l: l}
}

type encoderFlags struct {
	binary  string
	quality float64
	comment string
	workDir string
}

func (e *encoderFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&e.binary, "oggenc", "", "Vorbis encoder binary (default $"+encoderEnv+", oggenc2, oggenc)")
	fs.Float64Var(&e.quality, "q", exttool.DefaultQuality, "Vorbis quality")
	fs.StringVar(&e.comment, "comment", exttool.DefaultComment, "comment stamped on every channel stream")
	fs.StringVar(&e.workDir, "workdir", "", "parent of the scratch directories (default system temp)")
}

func (e *encoderFlags) encoder() (lyntool.ChannelEncoder, error) {
	bin := e.binary
	if bin == "" {
		bin = os.Getenv(encoderEnv)
	}

	var candidates []string
	if bin != "" {
		candidates = []string{bin}
	}

	path, err := exttool.LookPath(candidates...)
	if err != nil {
		return nil, err
	}

	return &exttool.OggEnc{Binary: path, Quality: e.quality, Comment: e.comment}, nil
}

func runExtract(ctx context.Context, args []string, logger *log.Logger) error {
	fs := newFlagSet("extract")
	rawDir := fs.String("raw", "", "also write the channel streams into this directory")
	noTrim := fs.Bool("notrim", false, "keep the interleave padding on each channel stream")
	verbose := fs.Bool("v", false, "log progress")

	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}

	ex, err := lyntool.ExtractFile(ctx, pos[0], pos[1], lyntool.ExtractOptions{
		NoTrim: *noTrim,
		RawDir: *rawDir,
		Logger: pipelineLogger(logger, *verbose),
	})
	if err != nil {
		return err
	}

	if ex.PCM == nil {
		logger.Printf("%s: %s cannot be decoded, wrote raw channel streams only", pos[0], ex.Container.Fmt.Codec)
		return nil
	}
	if *verbose {
		logger.Printf("%s: %d frames, %d channels @ %d Hz", pos[1], ex.Frames(), ex.Channels(), ex.SampleRate())
	}

	return nil
}

func runReimport(ctx context.Context, args []string, logger *log.Logger) error {
	fs := newFlagSet("reimport")
	var ef encoderFlags
	ef.register(fs)
	verbose := fs.Bool("v", false, "log progress")

	pos, err := parse(fs, args, 3)
	if err != nil {
		return err
	}

	enc, err := ef.encoder()
	if err != nil {
		return err
	}

	return lyntool.ReimportFile(ctx, pos[0], pos[1], pos[2], lyntool.ReimportOptions{
		Encoder: enc,
		WorkDir: ef.workDir,
		Logger:  pipelineLogger(logger, *verbose),
	})
}

// blockSize accepts decimal or 0x-prefixed hex.
type blockSize uint32

func (b *blockSize) String() string { return fmt.Sprintf("0x%X", uint32(*b)) }

func (b *blockSize) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	if v == 0 {
		return lyn.ErrInvalidInterleaveSize
	}
	*b = blockSize(v)

	return nil
}

func parseCodec(s string) (lyn.Codec, error) {
	switch strings.ToLower(s) {
	case "v1", "":
		return lyn.CodecVorbisV1, nil
	case "v2":
		return lyn.CodecVorbisV2, nil
	default:
		return 0, fmt.Errorf("%w: codec %q (want v1 or v2)", errUsage, s)
	}
}

func runOriginate(ctx context.Context, args []string, logger *log.Logger) error {
	fs := newFlagSet("originate")
	var ef encoderFlags
	ef.register(fs)
	block := blockSize(lyn.DefaultBlockSize)
	fs.Var(&block, "block", "interleave block size")
	codecName := fs.String("codec", "v1", "Vorbis codec id: v1 or v2")
	rate := fs.Int("rate", 0, "output sample rate (default: input rate)")
	channels := fs.Int("channels", 0, "output channel count (default: input channels)")
	verbose := fs.Bool("v", false, "log progress")

	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}

	codec, err := parseCodec(*codecName)
	if err != nil {
		return err
	}

	enc, err := ef.encoder()
	if err != nil {
		return err
	}

	return lyntool.OriginateFile(ctx, pos[0], pos[1], lyntool.OriginateOptions{
		Codec:      codec,
		BlockSize:  uint32(block),
		SampleRate: *rate,
		Channels:   *channels,
		Encoder:    enc,
		WorkDir:    ef.workDir,
		Logger:     pipelineLogger(logger, *verbose),
	})
}

func runInfo(args []string, out io.Writer) error {
	fs := newFlagSet("info")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(pos[0])
	if err != nil {
		return err
	}

	c, err := lyn.Parse(buf)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "file:        %s (%d bytes)\n", pos[0], len(buf))
	fmt.Fprintf(out, "codec:       %s (0x%04x)\n", c.Fmt.Codec, uint16(c.Fmt.Codec))
	fmt.Fprintf(out, "channels:    %d\n", c.Channels())
	fmt.Fprintf(out, "sample rate: %d Hz\n", c.Fmt.SampleRate)
	if c.Fact != nil {
		fmt.Fprintf(out, "samples:     %d (%s)\n", c.Fact.SampleCount, c.Duration())
	}
	fmt.Fprintf(out, "interleave:  0x%X (%s)\n", c.Data.BlockSize, c.Policy.Kind)
	fmt.Fprintf(out, "extra:       %d bytes\n", len(c.Extra))
	fmt.Fprintf(out, "body:        %d bytes\n", len(c.Data.Body))
	for _, w := range c.Warnings {
		fmt.Fprintf(out, "warning:     %s\n", w)
	}

	if !c.Fmt.Codec.IsVorbis() {
		return nil
	}

	streams, err := c.Streams()
	if err != nil {
		return err
	}
	streams = lyn.TrimToLogical(streams, c.Data.LogicalSizes)

	for ch, s := range streams {
		info, err := vorbis.Probe(s)
		if err != nil {
			fmt.Fprintf(out, "channel %d:   %d bytes, %v\n", ch, len(s), err)
			continue
		}
		fmt.Fprintf(out, "channel %d:   %d bytes, %d ch @ %d Hz, %d samples, %d bps nominal, vendor %q\n",
			ch, len(s), info.Channels, info.SampleRate, info.Length, info.NominalBitrate, info.Vendor)
		for _, cmt := range info.Comments {
			fmt.Fprintf(out, "             %s\n", cmt)
		}
	}

	return nil
}
