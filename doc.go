// SPDX-License-Identifier: EPL-2.0

// Package lyntool converts audio in and out of LyN containers, the
// RIFF-based .sns/.lwav files used by the LyN engine.
//
// Three pipelines are provided:
//
//   - Extract takes a container apart: channel streams, and decoded 16-bit
//     PCM when the codec is Vorbis or PCM.
//   - Reimport puts new audio into an existing Vorbis container, keeping
//     everything but the sample count and the audio itself.
//   - Originate builds a fresh Vorbis container with no reference file.
//
// The codec itself lives in formats/lyn. Vorbis encoding is delegated to a
// ChannelEncoder; the default one runs oggenc2 or oggenc from PATH, one
// process per channel, inside a scratch directory that is removed when the
// pipeline returns.
//
//	err := lyntool.ReimportFile(ctx, "music.sns", "new.flac", "music.out.sns",
//	    lyntool.ReimportOptions{Logger: log.Default()})
//
// Replacement and origination input is decoded by file extension through
// DefaultRegistry: WAV, Ogg Vorbis, MP3, AIFF and FLAC.
package lyntool
