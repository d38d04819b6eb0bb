// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/lyntool/audio"
	"github.com/ik5/lyntool/formats/mp3"
)

// Example decodes a replacement voice line and folds it to mono.
func Example() {
	f, err := os.Open("line.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := mp3.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	mono, err := audio.MatchChannels(src, 1)
	if err != nil {
		log.Fatal(err)
	}

	samples, err := audio.ReadAll(mono, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d mono samples at %d Hz\n", len(samples), mono.SampleRate())
}
