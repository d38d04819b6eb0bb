// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/aiff"
	"github.com/ik5/lyntool/formats/flac"
	"github.com/ik5/lyntool/formats/mp3"
	"github.com/ik5/lyntool/formats/vorbis"
	"github.com/ik5/lyntool/formats/wav"
	"github.com/ik5/lyntool/internal/exttool"
)

var (
	// ErrNoAudio is returned when an input decodes to zero frames.
	ErrNoAudio = errors.New("input has no audio")
)

// Logger receives progress and warning lines. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

func loggerOr(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}

	return l
}

// ChannelEncoder turns one channel of 16-bit PCM into a complete Ogg
// Vorbis stream. dir is a scratch directory private to the current
// conversion; Encode may be called concurrently for different channels.
type ChannelEncoder interface {
	Encode(ctx context.Context, dir string, channel int, pcm []int16, sampleRate int) ([]byte, error)
}

// defaultEncoder runs oggenc2 or oggenc from PATH.
func defaultEncoder() (ChannelEncoder, error) {
	bin, err := exttool.LookPath()
	if err != nil {
		return nil, err
	}

	return exttool.NewOggEnc(bin), nil
}

// DefaultRegistry knows every input format lyntool can decode.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(aiff.Decoder{}, "aif", "aiff")
	r.Register(flac.Decoder{}, "flac")

	return r
}

// openSource decodes path with the decoder registered for its extension.
// The returned Source owns the file.
func openSource(reg *audio.Registry, path string) (audio.Source, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

type fileSource struct {
	audio.Source
	file *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}

	return err
}

// writeAtomic creates path through a temp file in the same directory, so
// a failed run never leaves a partial output behind.
func writeAtomic(path string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	return writeAtomic(path, func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("%w", err)
		}
		return nil
	})
}

// stagedFiles writes files under temporary names and moves them into place
// together on commit.
type stagedFiles struct {
	tmp   []string
	final []string
}

func (s *stagedFiles) add(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	s.tmp = append(s.tmp, f.Name())
	s.final = append(s.final, path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *stagedFiles) commit() error {
	for len(s.tmp) > 0 {
		if err := os.Rename(s.tmp[0], s.final[0]); err != nil {
			return fmt.Errorf("%w", err)
		}
		s.tmp, s.final = s.tmp[1:], s.final[1:]
	}

	return nil
}

// discard removes every file not yet committed.
func (s *stagedFiles) discard() {
	for _, tmp := range s.tmp {
		os.Remove(tmp)
	}
	s.tmp, s.final = nil, nil
}
