// SPDX-License-Identifier: EPL-2.0

package exttool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ik5/lyntool/formats/wav"
	"github.com/pkg/errors"
)

const (
	DefaultQuality = 6.0
	// DefaultComment is the comment the engine's own encoder stamps on
	// every stream.
	DefaultComment = "ENCODER=SLib_encoder"
)

// OggEnc encodes mono PCM channels to Ogg Vorbis by running oggenc.
type OggEnc struct {
	Binary  string
	Quality float64
	// Comment is passed as --comment when not empty.
	Comment string
	// Runner defaults to ExecRunner.
	Runner Runner
}

// NewOggEnc returns an encoder with the default quality and comment.
func NewOggEnc(binary string) *OggEnc {
	return &OggEnc{Binary: binary, Quality: DefaultQuality, Comment: DefaultComment}
}

// Encode writes channel_<n>.wav into dir, runs the encoder on it and
// returns the contents of channel_<n>.ogg.
func (e *OggEnc) Encode(ctx context.Context, dir string, channel int, pcm []int16, sampleRate int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wavPath := filepath.Join(dir, fmt.Sprintf("channel_%d.wav", channel))
	oggPath := filepath.Join(dir, fmt.Sprintf("channel_%d.ogg", channel))

	if err := writeWAV(wavPath, sampleRate, pcm); err != nil {
		return nil, errors.Wrapf(err, "staging channel %d", channel)
	}

	args := []string{"-q", strconv.FormatFloat(e.Quality, 'g', -1, 64)}
	if e.Comment != "" {
		args = append(args, "--comment", e.Comment)
	}
	args = append(args, "-o", oggPath, wavPath)

	runner := e.Runner
	if runner == nil {
		runner = ExecRunner{Dir: dir}
	}

	out, err := runner.Run(ctx, e.Binary, args...)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, newToolError(e.Binary, args, out, err)
	}

	ogg, err := os.ReadFile(oggPath)
	if err != nil {
		return nil, newToolError(e.Binary, args, out, errors.Wrap(err, "no output produced"))
	}
	if len(ogg) == 0 {
		return nil, newToolError(e.Binary, args, out, errors.New("empty output"))
	}

	return ogg, nil
}

// writeWAV refuses to overwrite, so two encodes of one channel into the
// same directory fail loudly.
func writeWAV(path string, sampleRate int, pcm []int16) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	if err := wav.WritePCM16(f, sampleRate, 1, pcm, nil); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
