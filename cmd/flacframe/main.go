// flacframe walks every audio frame of a FLAC (native or Ogg-FLAC) stream
// and reports each frame's header fields, in the style of the teacher's
// flac-frame tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mewkiz/miniflac"
	"github.com/mewkiz/miniflac/adapter"
	"github.com/mewkiz/miniflac/frame"
)

var bytewise = flag.Bool("bytewise", false, "feed the decoder one byte at a time, bypassing Sync, as a boundary-condition check")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: flacframe [-bytewise] FILE...")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		var err error
		if *bytewise {
			err = flacFrameBytewise(path)
		} else {
			err = flacFrame(path)
		}
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// flacFrame drives the stream through adapter.Reader, the ordinary pull
// interface: Sync to each boundary, Decode every frame found past the
// metadata list.
func flacFrame(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := adapter.NewReader(f, miniflac.ContainerUnknown)
	frameNum := 0
	for {
		st, err := r.Sync()
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			break
		}
		if r.Decoder.Phase != miniflac.PhaseFrame {
			continue
		}
		st, err = r.Decode(nil)
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			break
		}
		printFrame(frameNum, r.Decoder.CurrentFrame())
		frameNum++
	}
	fmt.Fprintf(os.Stderr, "decoded %d frames\n", frameNum)
	return nil
}

// flacFrameBytewise feeds the decoder a single byte at a time and never
// calls Sync, the way examples/single-byte-decoder.c drives miniflac_decode
// directly: it demonstrates that Decoder.Decode alone, fed arbitrarily
// small chunks, reaches the same StatusOK boundaries Sync would have found.
// Native containers only: the one-byte-at-a-time Ogg page framing isn't
// exercised by this harness.
func flacFrameBytewise(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := &miniflac.Decoder{}
	d.Init(miniflac.ContainerNative)

	var buf [1]byte
	frameNum := 0
	for {
		_, err := io.ReadFull(f, buf[:])
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return err
		}
		st, _, err := d.Decode(buf[:], nil)
		switch st {
		case miniflac.StatusOK:
			printFrame(frameNum, d.CurrentFrame())
			frameNum++
		case miniflac.StatusContinue:
		case miniflac.StatusEnd:
			fmt.Fprintf(os.Stderr, "decoded %d frames\n", frameNum)
			return nil
		case miniflac.StatusError:
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "decoded %d frames\n", frameNum)
	return nil
}

func printFrame(frameNum int, fr *frame.Frame) {
	h := fr.Header
	fmt.Printf("frame %d: blocksize=%d sample_rate=%d bps=%d channels=%d\n",
		frameNum, h.SampleCount, h.SampleRate, h.BitsPerSample, len(fr.Channels))
}
