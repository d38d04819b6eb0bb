// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// LyN containers store one Ogg Vorbis stream per channel, so most streams
// seen here are mono:
//
//	src, err := vorbis.Decoder{}.Decode(bytes.NewReader(stream))
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(src, 0)
//
// Decoding stops at the end-of-stream page, so zero padding left behind by
// de-interleaving does not need to be trimmed first. Probe reads the
// stream headers (rate, channels, vendor, comments) without decoding audio.
//
// Encoding is not provided; see the exttool package.
package vorbis
