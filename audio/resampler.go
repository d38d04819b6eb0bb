// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// maxEmptyReads bounds how often a source may return (0, nil) in a row.
const maxEmptyReads = 100

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// Four frames around the read position:
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool

	// Fractional position between frames[1] and frames[2].
	pos float64

	srcBuf []float32
	primed bool
	eof    bool

	// One-pole low-pass state, only used when downsampling.
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

// NewResampler converts src to dstRate. A non-positive dstRate keeps the
// source rate.
func NewResampler(src Source, dstRate int) *Resampler {
	if dstRate <= 0 {
		dstRate = src.SampleRate()
	}
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame reads exactly one frame into dst. It reports false once the
// source has no complete frame left.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	got, empty := 0, 0
	for got < r.channels && !r.eof {
		n, err := r.src.ReadSamples(r.srcBuf[got:])
		got += n

		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
		case err != nil:
			return false, fmt.Errorf("%w", err)
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				return false, io.ErrNoProgress
			}
		}
	}
	if got < r.channels {
		return false, nil
	}

	copy(dst, r.srcBuf)

	if r.useFilter {
		if !r.primed {
			copy(r.filterState, dst)
		}
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true, nil
}

// prime loads the first frames. The first frame doubles as t-1 so output
// starts exactly at the first source frame.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	r.primed = true

	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < len(r.frames); i++ {
		if r.hasFrame[i], err = r.readFrame(r.frames[i]); err != nil {
			return err
		}
	}

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	r.frames[0], r.frames[1], r.frames[2], r.frames[3] = r.frames[1], r.frames[2], r.frames[3], r.frames[0]
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]

	ok, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	r.hasFrame[3] = ok

	if !r.hasFrame[1] {
		return io.EOF
	}

	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.hasFrame[1] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]

		for c := range r.channels {
			y0, y1 := r.frames[0][c], r.frames[1][c]
			y2, y3 := y1, y1
			if r.hasFrame[2] {
				y2, y3 = r.frames[2][c], r.frames[2][c]
			}
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			out[c] = cubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}

// cubicInterpolate is a Catmull-Rom spline between y1 (x=0) and y2 (x=1).
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
