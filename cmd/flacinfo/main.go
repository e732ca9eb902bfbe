// flacinfo dumps the metadata blocks of one or more FLAC (native or
// Ogg-FLAC) streams, in the style of the teacher's go-metaflac tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mewkiz/miniflac"
	"github.com/mewkiz/miniflac/adapter"
	"github.com/mewkiz/miniflac/meta"
)

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: flacinfo FILE...")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		if err := flacinfo(path); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func flacinfo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := adapter.NewReader(f, miniflac.ContainerUnknown)
	for blockNum := 0; ; blockNum++ {
		st, err := r.Sync()
		if err != nil {
			return err
		}
		if st == miniflac.StatusEnd {
			return nil
		}
		if r.Decoder.Phase == miniflac.PhaseFrame {
			// Sync stopped at the first audio frame's header; every
			// metadata block has already been listed.
			return nil
		}
		listBlock(r.Decoder.CurrentBlock(), blockNum)
	}
}

var typeName = map[meta.Type]string{
	meta.TypeStreamInfo:    "STREAMINFO",
	meta.TypePadding:       "PADDING",
	meta.TypeApplication:   "APPLICATION",
	meta.TypeSeekTable:     "SEEKTABLE",
	meta.TypeVorbisComment: "VORBIS_COMMENT",
	meta.TypeCueSheet:      "CUESHEET",
	meta.TypePicture:       "PICTURE",
}

func listBlock(block *meta.Block, blockNum int) {
	name, ok := typeName[block.Header.Type]
	if !ok {
		name = "UNKNOWN"
	}
	fmt.Printf("METADATA block #%d\n", blockNum)
	fmt.Printf("  type: %d (%s)\n", block.Header.Type, name)
	fmt.Printf("  is last: %t\n", block.Header.IsLast)
	fmt.Printf("  length: %d\n", block.Header.Length)

	switch {
	case block.StreamInfo != nil:
		listStreamInfo(block.StreamInfo)
	case block.Application != nil:
		listApplication(block.Application)
	case block.SeekTable != nil:
		listSeekTable(block.SeekTable)
	case block.VorbisComment != nil:
		listVorbisComment(block.VorbisComment)
	case block.CueSheet != nil:
		listCueSheet(block.CueSheet)
	case block.Picture != nil:
		listPicture(block.Picture)
	}
}

func listStreamInfo(si *meta.StreamInfo) {
	fmt.Printf("  minimum blocksize: %d samples\n", si.MinBlockSize)
	fmt.Printf("  maximum blocksize: %d samples\n", si.MaxBlockSize)
	fmt.Printf("  minimum framesize: %d bytes\n", si.MinFrameSize)
	fmt.Printf("  maximum framesize: %d bytes\n", si.MaxFrameSize)
	fmt.Printf("  sample_rate: %d Hz\n", si.SampleRate)
	fmt.Printf("  channels: %d\n", si.NChannels)
	fmt.Printf("  bits-per-sample: %d\n", si.BitsPerSample)
	fmt.Printf("  total samples: %d\n", si.NSamples)
	fmt.Printf("  MD5 signature: %x\n", si.MD5)
}

func listApplication(app *meta.Application) {
	fmt.Printf("  application ID: %08X\n", app.ID)
	fmt.Printf("  data contents: %d bytes\n", len(app.Data))
}

func listSeekTable(st *meta.SeekTable) {
	fmt.Printf("  seek points: %d\n", len(st.Points))
	for i, p := range st.Points {
		if p.SampleNum == meta.PlaceholderPoint {
			fmt.Printf("    point %d: PLACEHOLDER\n", i)
			continue
		}
		fmt.Printf("    point %d: sample_number=%d, stream_offset=%d, frame_samples=%d\n",
			i, p.SampleNum, p.Offset, p.NSamples)
	}
}

// listVorbisComment reports only the block's scalar head fields. The
// individual tags are an iterator-only field in the meta package (see
// VorbisComment.NextTag), never buffered as a slice, so they are not
// recoverable once Sync has fully drained the block body.
func listVorbisComment(vc *meta.VorbisComment) {
	fmt.Printf("  vendor string: %s\n", vc.Vendor)
	fmt.Printf("  comments: %d\n", vc.NTags)
}

// listCueSheet reports only the cue sheet's scalar head fields, for the same
// reason listVorbisComment does not enumerate tags: tracks and their index
// points are iterator-only (CueSheet.NextTrack/NextIndex).
func listCueSheet(cs *meta.CueSheet) {
	fmt.Printf("  media catalog number: %s\n", cs.MCN)
	fmt.Printf("  lead-in: %d\n", cs.NLeadInSamples)
	fmt.Printf("  is CD: %t\n", cs.IsCompactDisc)
	fmt.Printf("  number of tracks: %d\n", cs.NTracks)
}

// listPicture reports every scalar field the meta package retains. The
// picture's raw bytes are an iterator-only field (Picture.DataNext) and are
// discarded as Sync drains the block, to avoid buffering what may be a
// multi-megabyte image in a decoder built around bounded memory use.
func listPicture(pic *meta.Picture) {
	fmt.Printf("  type: %d\n", pic.PictureType)
	fmt.Printf("  MIME type: %s\n", pic.MIME)
	fmt.Printf("  description: %s\n", pic.Desc)
	fmt.Printf("  width: %d\n", pic.Width)
	fmt.Printf("  height: %d\n", pic.Height)
	fmt.Printf("  depth: %d\n", pic.ColorDepth)
	fmt.Printf("  colors: %d\n", pic.ColorCount)
	fmt.Printf("  data length: %d\n", pic.DataLength)
}
