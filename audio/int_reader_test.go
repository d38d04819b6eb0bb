// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// fakeIntReader hands out data in chunks of at most step samples, the way
// go-audio decoders return short reads before the end.
type fakeIntReader struct {
	data []int
	step int
	err  error
}

func (f *fakeIntReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data[:min(len(buf.Data), f.step)], f.data)
	f.data = f.data[n:]

	return n, nil
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestIntReaderSource_Scaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		bias     int
		in       []int
		want     []float32
	}{
		{"16-bit", 16, 0, []int{-32768, 0, 16384}, []float32{-1, 0, 0.5}},
		{"unsigned 8-bit", 8, 128, []int{0, 128, 192}, []float32{-1, 0, 0.5}},
		{"signed 8-bit", 8, 0, []int{-128, 64}, []float32{-1, 0.5}},
		{"24-bit", 24, 0, []int{-8388608, 4194304}, []float32{-1, 0.5}},
		{"32-bit", 32, 0, []int{-2147483648, 1073741824}, []float32{-1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &IntReaderSource{
				Reader:   &fakeIntReader{data: tt.in, step: 2},
				Rate:     8000,
				NumChans: 1,
				BitDepth: tt.bitDepth,
				Bias:     tt.bias,
			}

			got, err := ReadAll(src, 16)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIntReaderSource_ShortReadIsNotEOF(t *testing.T) {
	t.Parallel()

	src := &IntReaderSource{Reader: &fakeIntReader{data: make([]int, 10), step: 3}, Rate: 8000, NumChans: 1, BitDepth: 16}

	n, err := src.ReadSamples(make([]float32, 8))
	if n != 3 || err != nil {
		t.Errorf("ReadSamples() = %d, %v, want 3, nil", n, err)
	}
}

func TestIntReaderSource_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad chunk")
	src := &IntReaderSource{Reader: &fakeIntReader{err: boom}, Rate: 8000, NumChans: 1, BitDepth: 16}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}

	eof := &IntReaderSource{Reader: &fakeIntReader{err: io.EOF}, Rate: 8000, NumChans: 1, BitDepth: 16}
	if _, err := eof.ReadSamples(make([]float32, 4)); !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want io.EOF", err)
	}
}

func TestIntReaderSource_Close(t *testing.T) {
	t.Parallel()

	rec := &closeRecorder{}
	src := &IntReaderSource{Reader: &fakeIntReader{}, Closer: rec}
	if err := src.Close(); err != nil || !rec.closed {
		t.Errorf("Close() = %v, closed = %v", err, rec.closed)
	}

	if err := (&IntReaderSource{}).Close(); err != nil {
		t.Errorf("Close() without closer = %v", err)
	}
}

func TestAsReadSeeker(t *testing.T) {
	t.Parallel()

	br := bytes.NewReader([]byte("abc"))
	rs, err := AsReadSeeker(br)
	if err != nil || rs != io.ReadSeeker(br) {
		t.Errorf("AsReadSeeker(seeker) = %v, %v, want the same reader", rs, err)
	}

	rs, err = AsReadSeeker(io.MultiReader(strings.NewReader("xyz")))
	if err != nil {
		t.Fatalf("AsReadSeeker() error = %v", err)
	}
	if _, err := rs.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	rest, _ := io.ReadAll(rs)
	if string(rest) != "yz" {
		t.Errorf("read after seek = %q, want yz", rest)
	}
}
