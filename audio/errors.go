// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrChannelCountMismatch indicates a source cannot be adapted to the requested channel count.
	ErrChannelCountMismatch = errors.New("channel count mismatch")

	// ErrNoDecoder indicates no decoder is registered for a file format.
	ErrNoDecoder = errors.New("no decoder registered")
)

// UnknownFormatError is returned by Registry.ForPath.
type UnknownFormatError struct {
	Path string
	Ext  string
}

func (e *UnknownFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: %q has no file extension", ErrNoDecoder, e.Path)
	}

	return fmt.Sprintf("%s: %q (extension %q)", ErrNoDecoder, e.Path, e.Ext)
}

func (e *UnknownFormatError) Unwrap() error { return ErrNoDecoder }
