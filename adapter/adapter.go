// Package adapter wraps miniflac.Decoder's push API with a buffered,
// pull-style interface over an io.Reader, for callers that would rather
// block on Read than manage their own scratch buffer.
package adapter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mewkiz/miniflac"
)

const initialBufSize = 4096

// Reader drives a miniflac.Decoder from an io.Reader, growing and compacting
// an internal buffer the way bufseekio.ReadSeeker manages its own: a single
// []byte with a read cursor and a write cursor, compacted in place before
// refilling from the source and grown only when a compact still leaves no
// room.
type Reader struct {
	// Decoder is embedded by value so a caller can still reach the full
	// miniflac.Decoder surface (CurrentBlock, CurrentFrame, SetDebug, ...)
	// through a Reader.
	Decoder miniflac.Decoder

	src    io.Reader
	buf    []byte
	pos    int // start of unconsumed bytes
	end    int // end of valid bytes
	srcEOF bool

	haveTotal bool
	total     uint64
	decoded   uint64
}

// NewReader returns a Reader that pulls from src. Pass miniflac.ContainerUnknown
// to have the container probed from the stream's first byte.
func NewReader(src io.Reader, container miniflac.Container) *Reader {
	r := &Reader{
		src: src,
		buf: make([]byte, initialBufSize),
	}
	r.Decoder.Init(container)
	return r
}

// fill compacts unconsumed bytes to the front of buf, growing it if that
// still leaves no room, then issues one Read against src.
func (r *Reader) fill() error {
	if r.pos > 0 {
		r.end = copy(r.buf, r.buf[r.pos:r.end])
		r.pos = 0
	}
	if r.end == len(r.buf) {
		grown := make([]byte, 2*len(r.buf))
		copy(grown, r.buf[:r.end])
		r.buf = grown
	}
	n, err := r.src.Read(r.buf[r.end:])
	r.end += n
	if err != nil {
		if err == io.EOF {
			r.srcEOF = true
			return nil
		}
		return errors.Wrap(err, "adapter: reading source")
	}
	return nil
}

// Sync advances to the next metadata or frame header boundary; see
// miniflac.Decoder.Sync. It returns miniflac.StatusEnd once the stream's
// declared sample count (or, absent one, the source's own EOF) is reached
// at a clean boundary.
func (r *Reader) Sync() (miniflac.Status, error) {
	return r.drive(func(data []byte) (miniflac.Status, int, error) {
		return r.Decoder.Sync(data)
	})
}

// Decode decodes the next audio frame, writing samples into out exactly as
// miniflac.Decoder.Decode does. Pass a nil out to traverse frames without
// writing samples.
func (r *Reader) Decode(out [][]int32) (miniflac.Status, error) {
	st, err := r.drive(func(data []byte) (miniflac.Status, int, error) {
		return r.Decoder.Decode(data, out)
	})
	if st == miniflac.StatusOK {
		r.decoded += uint64(r.Decoder.CurrentFrame().Header.SampleCount)
	}
	return st, err
}

// drive repeatedly feeds call with whatever unconsumed bytes are buffered,
// refilling from src whenever call reports StatusContinue, until call
// settles on a boundary, an error, or the stream is exhausted.
//
// Grounded on NewStream's own termination test in the teacher ("read frames
// while i < si.SampleCount"): once STREAMINFO declares a total sample count
// and that many samples have been decoded, a Reader reports StatusEnd
// without asking src for another byte. Streams with an unknown (zero)
// sample count instead rely on io.EOF from src arriving exactly at a clean
// boundary, which is the same heuristic the teacher leans on implicitly via
// io.ReadFull/NewFrame returning io.EOF at the top of a frame read.
func (r *Reader) drive(call func([]byte) (miniflac.Status, int, error)) (miniflac.Status, error) {
	if r.haveTotal && r.total != 0 && r.decoded >= r.total {
		return miniflac.StatusEnd, nil
	}
	for {
		st, n, err := call(r.buf[r.pos:r.end])
		r.pos += n
		switch st {
		case miniflac.StatusContinue:
			if r.srcEOF && r.pos == r.end {
				return miniflac.StatusEnd, nil
			}
			if err := r.fill(); err != nil {
				return miniflac.StatusError, err
			}
			if r.srcEOF && r.pos == r.end {
				return miniflac.StatusEnd, nil
			}
		case miniflac.StatusOK:
			if si := r.Decoder.CurrentBlock().StreamInfo; si != nil {
				r.total = si.NSamples
				r.haveTotal = true
			}
			return st, nil
		case miniflac.StatusError:
			return st, errors.Wrap(err, "adapter: decoding")
		default:
			return st, err
		}
	}
}
