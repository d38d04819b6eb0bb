// SPDX-License-Identifier: EPL-2.0

package lyntool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/internal/workspace"
)

// prepare brings src to rate and channels and splits it into one int16
// slice per channel.
func prepare(src audio.Source, rate, channels int, log Logger) ([][]int16, error) {
	if src.SampleRate() != rate {
		log.Printf("resampling %d Hz -> %d Hz", src.SampleRate(), rate)
		src = audio.NewResampler(src, rate)
	}

	if src.Channels() != channels {
		log.Printf("mapping %d channels -> %d", src.Channels(), channels)
		var err error
		if src, err = audio.MatchChannels(src, channels); err != nil {
			return nil, err
		}
	}

	samples, err := audio.ReadAll(src, audio.DefaultBufSize)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	pcm := audio.SplitInt16(samples, channels)
	if len(pcm) == 0 || len(pcm[0]) == 0 {
		return nil, ErrNoAudio
	}

	return pcm, nil
}

// encodeChannels encodes every channel concurrently inside a fresh
// workspace. The first failure cancels the others.
func encodeChannels(ctx context.Context, enc ChannelEncoder, workDir string, pcm [][]int16, rate int, log Logger) ([][]byte, error) {
	ws, err := workspace.New(workDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Printf("workspace %s: %v", ws.ID(), err)
		}
	}()

	log.Printf("workspace %s: encoding %d channels at %d Hz", ws.ID(), len(pcm), rate)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams := make([][]byte, len(pcm))
	errs := make([]error, len(pcm))

	var wg sync.WaitGroup
	for ch, samples := range pcm {
		wg.Go(func() {
			stream, err := enc.Encode(ctx, ws.Dir(), ch, samples, rate)
			if err != nil {
				errs[ch] = fmt.Errorf("encoding channel %d: %w", ch, err)
				cancel()
				return
			}
			streams[ch] = stream
		})
	}
	wg.Wait()

	// report the root cause rather than a sibling's cancellation
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil || (errors.Is(first, context.Canceled) && !errors.Is(err, context.Canceled)) {
			first = err
		}
	}
	if first != nil {
		return nil, first
	}

	return streams, nil
}
