// SPDX-License-Identifier: EPL-2.0

package flac_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/framesource/formats/flac"
)

// Example demonstrates opening a FLAC file for frame-accurate reading.
func Example() {
	f, err := os.Open("testdata/sample.flac")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	demux, dec, err := flac.Opener{}.Open(f)
	if err != nil {
		log.Fatal(err)
	}
	defer demux.Close()
	defer dec.Close()

	props := demux.Properties()
	fmt.Printf("Sample Rate: %d Hz\n", props.SampleRate)
	fmt.Printf("Channels: %d\n", props.Channels)
	fmt.Printf("Frames: %d\n", props.Duration)
}
