package adapter

import (
	"bytes"
	"io"
	"testing"

	"github.com/mewkiz/miniflac"
)

// minimalStreamInfoOnly returns a native FLAC stream containing only the
// fLaC marker and a single, last STREAMINFO block, with no audio frames.
func minimalStreamInfoOnly() []byte {
	body := []byte{
		0x10, 0x00, // min block size 4096
		0x10, 0x00, // max block size 4096
		0x00, 0x00, 0x10, // min frame size
		0x00, 0x00, 0x20, // max frame size
		0x0A, 0xC4, 0x42, 0xF0, 0x00, 0x00, 0x00, 0x00, // sample_rate/nchannels/bps/total
	}
	md5 := make([]byte, 16)
	for i := range md5 {
		md5[i] = byte(i + 1)
	}
	body = append(body, md5...)
	header := []byte{0x80, 0x00, 0x00, byte(len(body))}
	out := append([]byte("fLaC"), header...)
	out = append(out, body...)
	return out
}

func TestSyncDecodesStreamInfoThenEnds(t *testing.T) {
	data := minimalStreamInfoOnly()
	r := NewReader(bytes.NewReader(data), miniflac.ContainerNative)

	st, err := r.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st != miniflac.StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	si := r.Decoder.CurrentBlock().StreamInfo
	if si == nil {
		t.Fatal("CurrentBlock().StreamInfo = nil")
	}
	if si.SampleRate != 44100 || si.NChannels != 2 || si.BitsPerSample != 16 {
		t.Errorf("StreamInfo = %+v, want sample_rate=44100 nchannels=2 bps=16", si)
	}

	// No audio frame follows, so the next Sync call must hit a clean EOF
	// boundary and report StatusEnd rather than an error.
	st, err = r.Sync()
	if err != nil {
		t.Fatalf("Sync after metadata: %v", err)
	}
	if st != miniflac.StatusEnd {
		t.Fatalf("status = %v, want end", st)
	}
}

// tinyReader hands back at most one byte per Read call, exercising fill's
// compact-then-refill loop the way a slow network source would.
type tinyReader struct {
	data []byte
	pos  int
}

func (r *tinyReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:r.pos+1])
	r.pos += n
	return n, nil
}

func TestSyncOverOneByteAtATimeSource(t *testing.T) {
	data := minimalStreamInfoOnly()
	r := NewReader(&tinyReader{data: data}, miniflac.ContainerNative)

	st, err := r.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st != miniflac.StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if r.Decoder.CurrentBlock().StreamInfo.NChannels != 2 {
		t.Errorf("NChannels = %d, want 2", r.Decoder.CurrentBlock().StreamInfo.NChannels)
	}
}

func TestSyncPropagatesSourceError(t *testing.T) {
	wantErr := io.ErrClosedPipe
	r := NewReader(&erroringReader{err: wantErr}, miniflac.ContainerNative)
	_, err := r.Sync()
	if err == nil {
		t.Fatal("expected an error")
	}
}

type erroringReader struct{ err error }

func (r *erroringReader) Read(p []byte) (int, error) { return 0, r.err }
