// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing shared by every format decoder
// and by the container pipelines.
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Decoders and processors implement Source so they can be chained.
// Samples are interleaved float32 in [-1.0, 1.0].
//
// # Processing
//
//   - Resampler changes the sample rate with cubic interpolation and a
//     light low-pass filter when downsampling.
//   - MonoMixer averages all channels, Fanout duplicates a mono source
//     and MatchChannels chooses between them.
//   - ReadAll, SplitInt16 and MergeFloat32 move between streaming sources
//     and whole per-channel buffers.
//
// A typical chain when replacing the audio of a two-channel container:
//
//	dec, _ := registry.ForPath("line.mp3")
//	src, _ := dec.Decode(f)
//	resampled := audio.NewResampler(src, 44100)
//	matched, err := audio.MatchChannels(resampled, 2)
//	if err != nil {
//	    return err
//	}
//	samples, err := audio.ReadAll(matched, 0)
//	perChannel := audio.SplitInt16(samples, 2)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav", "wave")
//	decoder, err := registry.ForPath("voice.wav")
//
// # Error Handling
//
// Sources return io.EOF when no more data is available, possibly together
// with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
