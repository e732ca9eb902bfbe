// flacremux reconstructs a minimal native FLAC stream from a native FLAC
// source: the fLaC marker, a single STREAMINFO block patched to is-last, and
// every audio frame copied verbatim. Ogg-FLAC sources are not supported.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/miniflac"
	"github.com/mewkiz/miniflac/adapter"
)

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: flacremux IN.flac OUT.flac")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if err := remux(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("%+v", err)
	}
}

// remux drops every metadata block but STREAMINFO and copies audio frames
// byte-for-byte.
//
// Grounded on examples/basic-remuxer.c: that program patches
// mem.buffer[mem.pos-4] to 0x80 in place, marking the retained STREAMINFO
// block as last, rather than re-serializing it from decoded fields; it then
// demuxes frames by calling miniflac_decode with a null sample sink purely
// to learn each frame's byte length before copying the source bytes
// verbatim. This does the same, using Decoder.BytesReadNative before and
// after each Sync/Decode call to recover the raw byte range from the
// source file instead of a pointer into an in-memory buffer. Native
// container only: remuxing an Ogg-FLAC source into native framing would
// need to re-derive frame boundaries across Ogg page breaks, which
// BytesReadNative (a native-stream byte counter) cannot do.
func remux(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	r := adapter.NewReader(in, miniflac.ContainerNative)

	if _, err := out.Write([]byte("fLaC")); err != nil {
		return err
	}

	wroteStreamInfo := false
	var start uint64
	for r.Decoder.Phase != miniflac.PhaseFrame {
		start = r.Decoder.BytesReadNative()
		st, err := r.Sync()
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			return fmt.Errorf("flacremux: stream ended before any audio frame")
		}
		end := r.Decoder.BytesReadNative()
		if !wroteStreamInfo && r.Decoder.CurrentBlock().StreamInfo != nil {
			// The first Sync also consumes the fLaC marker, so take only the
			// block's own header and body from the tail of the range.
			raw := make([]byte, 4+uint64(r.Decoder.CurrentBlock().Header.Length))
			if _, err := in.ReadAt(raw, int64(end)-int64(len(raw))); err != nil {
				return err
			}
			raw[0] |= 0x80 // force is-last: every other metadata block is dropped
			if _, err := out.Write(raw); err != nil {
				return err
			}
			wroteStreamInfo = true
		}
	}
	if !wroteStreamInfo {
		return fmt.Errorf("flacremux: stream has no STREAMINFO block")
	}

	// start now marks the first frame's sync code: the Sync that ended the
	// loop above consumed that frame's header, which Decode then completes.
	frameNum := 0
	for {
		st, err := r.Decode(nil)
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			break
		}
		end := r.Decoder.BytesReadNative()
		raw := make([]byte, end-start)
		if _, err := in.ReadAt(raw, int64(start)); err != nil {
			return err
		}
		if _, err := out.Write(raw); err != nil {
			return err
		}
		start = end
		frameNum++
		if frameNum%10 == 0 {
			fmt.Fprintf(os.Stderr, "remuxed %d frames\n", frameNum)
		}
	}
	fmt.Fprintf(os.Stderr, "remuxed %d frames\n", frameNum)
	return nil
}
