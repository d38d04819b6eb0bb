// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/lyn"
	"github.com/ik5/lyntool/internal/audiotest"
)

// le16 is the identity "codec" used by the fakes: 16-bit little-endian
// samples.
func le16(pcm []int16) []byte {
	out := make([]byte, 2*len(pcm))
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}

	return out
}

// fakeEncoder encodes channels as raw le16 bytes.
type fakeEncoder struct {
	mtx   sync.Mutex
	calls map[int][]int16
	rates []int
	dirs  map[string]bool
	fail  map[int]error
}

func (e *fakeEncoder) Encode(ctx context.Context, dir string, channel int, pcm []int16, sampleRate int) ([]byte, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("scratch dir %q unusable: %v", dir, err)
	}

	e.mtx.Lock()
	if e.calls == nil {
		e.calls = map[int][]int16{}
		e.dirs = map[string]bool{}
	}
	e.calls[channel] = pcm
	e.rates = append(e.rates, sampleRate)
	e.dirs[dir] = true
	failure := e.fail[channel]
	e.mtx.Unlock()

	if failure != nil {
		return nil, failure
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return le16(pcm), nil
}

func (e *fakeEncoder) callCount() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.rates)
}

// le16Decoder decodes le16 channel streams as mono audio at Rate.
type le16Decoder struct {
	Rate int
	Err  error
}

func (d le16Decoder) Decode(r io.Reader) (audio.Source, error) {
	if d.Err != nil {
		return nil, d.Err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		samples[i] = audio.Int16ToFloat32(int16(binary.LittleEndian.Uint16(data[2*i:])))
	}

	return &audiotest.SliceSource{Rate: d.Rate, NumChans: 1, Samples: samples}, nil
}

// recordingLogger collects formatted lines.
type recordingLogger struct {
	mtx   sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) contains(s string) bool {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}

	return false
}

// nearly compares int16 buffers allowing for the float conversion loss.
func nearly(t *testing.T, got, want []int16) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if d := int(got[i]) - int(want[i]); d < -2 || d > 2 {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("leftover %s in %s", e.Name(), dir)
	}
}

// vorbisContainer builds a Vorbis container whose channel streams are le16.
func vorbisContainer(t *testing.T, rate uint32, blockSize uint32, chans ...[]int16) []byte {
	t.Helper()

	streams := make([][]byte, len(chans))
	frames := 0
	for i, c := range chans {
		streams[i] = le16(c)
		frames = max(frames, len(c))
	}

	c, err := lyn.Originate(lyn.OriginateParams{
		Codec:       lyn.CodecVorbisV2,
		Channels:    len(chans),
		SampleRate:  rate,
		SampleCount: uint32(frames),
		BlockSize:   blockSize,
		Streams:     streams,
	})
	if err != nil {
		t.Fatalf("lyn.Originate() error = %v", err)
	}

	buf, err := c.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	return buf
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, path := range []string{"a.wav", "b.WAVE", "c.ogg", "d.mp3", "e.aif", "f.AIFF", "g.flac"} {
		if _, err := reg.ForPath(path); err != nil {
			t.Errorf("ForPath(%q) error = %v", path, err)
		}
	}

	if _, err := reg.ForPath("h.sns"); !errors.Is(err, audio.ErrNoDecoder) {
		t.Errorf("ForPath(.sns) error = %v, want ErrNoDecoder", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.sns")

	if err := writeFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("writeFileAtomic() error = %v", err)
	}

	boom := errors.New("boom")
	err := writeAtomic(path, func(f *os.File) error {
		f.WriteString("partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("writeAtomic() error = %v, want boom", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("file = %q after failed write, want the previous contents", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only out.sns", len(entries))
	}
}

func TestOpenSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := openSource(nil, filepath.Join(dir, "missing.xyz")); !errors.Is(err, audio.ErrNoDecoder) {
		t.Errorf("openSource(.xyz) error = %v, want ErrNoDecoder", err)
	}
	if _, err := openSource(nil, filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("openSource(missing) error = %v, want ErrNotExist", err)
	}

	bogus := filepath.Join(dir, "bogus.wav")
	os.WriteFile(bogus, []byte("not audio"), 0o600)
	if _, err := openSource(nil, bogus); err == nil || !strings.Contains(err.Error(), "bogus.wav") {
		t.Errorf("openSource(bogus) error = %v, want a decode error naming the file", err)
	}
}
