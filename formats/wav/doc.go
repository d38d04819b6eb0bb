// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE PCM files on top of
// github.com/go-audio/wav.
//
// Decoder accepts integer PCM at 8, 16, 24 and 32 bits with any number of
// channels and yields float32 samples in [-1, 1]. WritePCM16 produces the
// 16-bit files handed to the Vorbis encoder and written by extraction:
//
//	f, _ := os.Create("out.wav")
//	defer f.Close()
//	err := wav.WritePCM16(f, 48000, 2, samples, &wav.Metadata{Software: "lyntool"})
package wav
