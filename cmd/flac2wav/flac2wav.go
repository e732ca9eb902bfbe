// flac2wav is a tool which converts FLAC files to WAV files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"

	"github.com/mewkiz/miniflac"
	"github.com/mewkiz/miniflac/adapter"
	"github.com/mewkiz/miniflac/pcmwav"
)

// flagForce specifies if file overwriting should be forced, when a WAV file of
// the same name already exists.
var flagForce bool

func init() {
	flag.BoolVar(&flagForce, "f", false, "Force overwrite.")
}

func main() {
	flag.Parse()
	for _, path := range flag.Args() {
		err := flac2wav(path)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// flac2wav converts the provided FLAC (native or Ogg-FLAC) file to a WAV
// file.
func flac2wav(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	wavPath := pathutil.TrimExt(path) + ".wav"
	if !flagForce {
		exists, err := osutil.Exists(wavPath)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("the file %q exists already", wavPath)
		}
	}
	fw, err := os.Create(wavPath)
	if err != nil {
		return err
	}
	defer fw.Close()

	r := adapter.NewReader(f, miniflac.ContainerUnknown)

	var w *pcmwav.Writer
	var out [][]int32
	for {
		st, err := r.Sync()
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			break
		}
		if r.Decoder.Phase != miniflac.PhaseFrame {
			if si := r.Decoder.CurrentBlock().StreamInfo; si != nil && w == nil {
				w = pcmwav.NewWriter(fw, si)
				out = make([][]int32, si.NChannels)
				for c := range out {
					out[c] = make([]int32, si.MaxBlockSize)
				}
			}
			continue
		}
		if w == nil {
			return fmt.Errorf("flac2wav: %s: no STREAMINFO block before the first audio frame", path)
		}
		st, err = r.Decode(out)
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			break
		}
		n := int(r.Decoder.CurrentFrame().Header.SampleCount)
		framed := make([][]int32, len(out))
		for c := range out {
			framed[c] = out[c][:n]
		}
		if err := w.WriteFrame(framed); err != nil {
			return err
		}
	}

	if w == nil {
		return fmt.Errorf("flac2wav: %s: stream has no audio", path)
	}
	return w.Close()
}
