// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/lyn"
	"github.com/ik5/lyntool/formats/wav"
)

func TestExtract_Vorbis(t *testing.T) {
	t.Parallel()

	left := []int16{1000, 2000, 3000, 4000, 5000}
	right := []int16{-1000, -2000, -3000}
	buf := vorbisContainer(t, 8000, 4, left, right)

	logger := &recordingLogger{}
	ex, err := Extract(context.Background(), buf, ExtractOptions{Decoder: le16Decoder{Rate: 8000}, Logger: logger})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ex.SampleRate() != 8000 || ex.Channels() != 2 {
		t.Errorf("layout = %d ch @ %d, want 2 @ 8000", ex.Channels(), ex.SampleRate())
	}
	if ex.StreamExt() != "ogg" {
		t.Errorf("StreamExt() = %q, want ogg", ex.StreamExt())
	}

	// trimmed streams are exactly what went in
	if !bytes.Equal(ex.Streams[0], le16(left)) || !bytes.Equal(ex.Streams[1], le16(right)) {
		t.Errorf("streams not trimmed to their logical sizes: %d / %d bytes", len(ex.Streams[0]), len(ex.Streams[1]))
	}

	// the shorter channel is padded with silence
	want := []int16{1000, -1000, 2000, -2000, 3000, -3000, 4000, 0, 5000, 0}
	nearly(t, ex.PCM, want)
	if ex.Frames() != 5 {
		t.Errorf("Frames() = %d, want 5", ex.Frames())
	}
	if !logger.contains("vorbis") {
		t.Errorf("log lines %v do not describe the container", logger.lines)
	}
}

func TestExtract_NoTrimKeepsPadding(t *testing.T) {
	t.Parallel()

	buf := vorbisContainer(t, 8000, 4, []int16{1, 2, 3}, []int16{4})

	ex, err := Extract(context.Background(), buf, ExtractOptions{NoTrim: true, Decoder: le16Decoder{Rate: 8000}})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// 6 and 2 bytes padded to two 4-byte blocks each
	for ch, s := range ex.Streams {
		if len(s) != 8 {
			t.Errorf("stream %d is %d bytes, want 8", ch, len(s))
		}
	}

	// padding decodes as silence
	nearly(t, ex.PCM, []int16{1, 4, 2, 0, 3, 0, 0, 0})
}

func TestExtract_ResamplesToContainerRate(t *testing.T) {
	t.Parallel()

	ch := make([]int16, 200)
	buf := vorbisContainer(t, 8000, 64, ch)

	logger := &recordingLogger{}
	ex, err := Extract(context.Background(), buf, ExtractOptions{Decoder: le16Decoder{Rate: 16000}, Logger: logger})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ex.Frames() != 100 {
		t.Errorf("Frames() = %d, want 100 after 16000 -> 8000", ex.Frames())
	}
	if !logger.contains("resampling 16000 Hz -> 8000 Hz") {
		t.Errorf("no resampling notice in %v", logger.lines)
	}
}

func TestExtract_DecoderFailure(t *testing.T) {
	t.Parallel()

	buf := vorbisContainer(t, 8000, 4, []int16{1}, []int16{2})
	bad := errors.New("corrupt page")

	_, err := Extract(context.Background(), buf, ExtractOptions{Decoder: le16Decoder{Err: bad}})
	if !errors.Is(err, bad) {
		t.Errorf("Extract() error = %v, want the decoder failure", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := vorbisContainer(t, 8000, 4, []int16{1})
	if _, err := Extract(ctx, buf, ExtractOptions{Decoder: le16Decoder{Rate: 8000}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

// pcmContainer interleaves two 16-bit channels with the derived block
// size of one 2-byte sample per channel slot.
func pcmContainer(t *testing.T, body []byte) []byte {
	t.Helper()

	c := &lyn.Container{
		Fmt:    lyn.Fmt{Codec: lyn.CodecPCM, Channels: 2, SampleRate: 11025, Tail: []byte{0x10, 0, 0, 0}},
		Data:   lyn.Data{BlockSize: 4, Body: body},
		Policy: lyn.Interpret(lyn.CodecPCM, 2),
	}

	buf, err := c.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	return buf
}

func TestExtract_PCMPassesThrough(t *testing.T) {
	t.Parallel()

	// block size 4: two samples of channel 0, then two of channel 1
	body := le16([]int16{100, 200, -100, -200, 300, 400, -300, -400})

	ex, err := Extract(context.Background(), pcmContainer(t, body), ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []int16{100, -100, 200, -200, 300, -300, 400, -400}
	if !slices.Equal(ex.PCM, want) {
		t.Errorf("PCM = %v, want %v", ex.PCM, want)
	}
	if ex.StreamExt() != "bin" {
		t.Errorf("StreamExt() = %q, want bin", ex.StreamExt())
	}
}

func unknownContainer(t *testing.T) []byte {
	t.Helper()

	c := &lyn.Container{
		Fmt:    lyn.Fmt{Codec: 0x0166, Channels: 2, SampleRate: 32000},
		Data:   lyn.Data{BlockSize: lyn.FallbackBlockSize, Body: []byte("opaque-bytes")},
		Policy: lyn.Interpret(0x0166, 2),
	}

	buf, err := c.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	return buf
}

func TestExtract_UnknownCodecReturnsStreamsOnly(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	ex, err := Extract(context.Background(), unknownContainer(t), ExtractOptions{Logger: logger})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ex.PCM != nil {
		t.Errorf("PCM = %v, want nil for an unknown codec", ex.PCM)
	}
	if string(ex.Streams[0]) != "opaque-bytes" || len(ex.Streams[1]) != 0 {
		t.Errorf("streams = %q, want all bytes in channel 0", ex.Streams)
	}
	if len(ex.Warnings) != 2 {
		t.Errorf("Warnings = %q, want the policy and decode warnings", ex.Warnings)
	}
	if !logger.contains("0x0166") {
		t.Errorf("log lines %v do not mention the codec", logger.lines)
	}
}

func TestExtract_NotRIFF(t *testing.T) {
	t.Parallel()

	if _, err := Extract(context.Background(), []byte("OggS...."), ExtractOptions{}); !errors.Is(err, lyn.ErrNotRIFF) {
		t.Errorf("Extract() error = %v, want ErrNotRIFF", err)
	}
}

func TestExtractFile_WritesWAVAndStreams(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "music.sns")
	out := filepath.Join(dir, "music.wav")
	raw := filepath.Join(dir, "raw")

	left := []int16{8192, 16384}
	right := []int16{-8192, -16384}
	if err := os.WriteFile(in, vorbisContainer(t, 22050, 4, left, right), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractFile(context.Background(), in, out, ExtractOptions{RawDir: raw, Decoder: le16Decoder{Rate: 22050}})
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}

	for ch, want := range [][]int16{left, right} {
		got, err := os.ReadFile(filepath.Join(raw, "channel_"+string(rune('0'+ch))+".ogg"))
		if err != nil {
			t.Fatalf("raw stream %d: %v", ch, err)
		}
		if !bytes.Equal(got, le16(want)) {
			t.Errorf("raw stream %d = %v, want %v", ch, got, le16(want))
		}
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if src.Channels() != 2 || src.SampleRate() != 22050 {
		t.Errorf("output layout = %d ch @ %d, want 2 @ 22050", src.Channels(), src.SampleRate())
	}
	samples, err := audio.ReadAll(src, 0)
	if err != nil {
		t.Fatal(err)
	}
	nearly(t, audio.ToInt16(samples), []int16{8192, -8192, 16384, -16384})
}

func TestExtractFile_UnknownCodecWritesRawNextToOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "voice.lwav")
	out := filepath.Join(dir, "voice.wav")
	if err := os.WriteFile(in, unknownContainer(t), 0o600); err != nil {
		t.Fatal(err)
	}

	ex, err := ExtractFile(context.Background(), in, out, ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if ex.PCM != nil {
		t.Error("PCM decoded for an unknown codec")
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output WAV written for an undecodable codec: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "channel_0.bin"))
	if err != nil || string(got) != "opaque-bytes" {
		t.Errorf("channel_0.bin = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "channel_1.bin")); err != nil {
		t.Errorf("channel_1.bin missing: %v", err)
	}
}

func TestExtractFile_PCMHeaderIsCanonical(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "sfx.sns")
	out := filepath.Join(dir, "sfx.wav")
	os.WriteFile(in, pcmContainer(t, le16([]int16{1, 2, 3, 4})), 0o600)

	if _, err := ExtractFile(context.Background(), in, out, ExtractOptions{}); err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "RIFF") {
		t.Fatalf("output is not RIFF: %q", data[:4])
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 11025 {
		t.Errorf("output rate = %d, want 11025", rate)
	}
	if !bytes.Contains(data, []byte("lyntool")) {
		t.Error("output carries no software tag")
	}
}

func TestExtractFile_FailedWAVLeavesNoStreams(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "sfx.sns")
	raw := filepath.Join(dir, "raw")
	out := filepath.Join(dir, "missing", "sfx.wav")
	if err := os.WriteFile(in, pcmContainer(t, le16([]int16{1, 2, 3, 4})), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractFile(context.Background(), in, out, ExtractOptions{RawDir: raw}); err == nil {
		t.Fatal("ExtractFile() error = nil, want a write failure")
	}

	assertEmptyDir(t, raw)
}

func TestExtractFile_KeepsExistingStreamsNextToOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "voice.lwav")
	out := filepath.Join(dir, "voice.wav")
	mine := filepath.Join(dir, "channel_1.bin")
	if err := os.WriteFile(in, unknownContainer(t), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mine, []byte("keep me"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractFile(context.Background(), in, out, ExtractOptions{})
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("ExtractFile() error = %v, want os.ErrExist", err)
	}

	if got, _ := os.ReadFile(mine); string(got) != "keep me" {
		t.Errorf("existing channel_1.bin = %q, was overwritten", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "voice.lwav" && e.Name() != "channel_1.bin" {
			t.Errorf("leftover %s", e.Name())
		}
	}
}

func TestExtractFile_RawDirOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "voice.lwav")
	raw := filepath.Join(dir, "raw")
	if err := os.WriteFile(in, unknownContainer(t), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(raw, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(raw, "channel_0.bin"), []byte("stale"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractFile(context.Background(), in, filepath.Join(dir, "voice.wav"), ExtractOptions{RawDir: raw}); err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(raw, "channel_0.bin"))
	if err != nil || string(got) != "opaque-bytes" {
		t.Errorf("channel_0.bin = %q, %v", got, err)
	}
}
