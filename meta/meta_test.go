package meta

import (
	"testing"

	"github.com/mewkiz/miniflac/internal/bits"
)

func TestHeaderDecode(t *testing.T) {
	// is_last=1, type=0 (STREAMINFO), length=34
	var r bits.Reader
	r.Rebind([]byte{0x80, 0x00, 0x00, 0x22})
	var h Header
	st, err := h.Decode(&r)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if !h.IsLast {
		t.Error("IsLast = false, want true")
	}
	if h.Type != TypeStreamInfo {
		t.Errorf("Type = %v, want stream info", h.Type)
	}
	if h.Length != 34 {
		t.Errorf("Length = %d, want 34", h.Length)
	}
}

func TestHeaderDecodeInvalidType(t *testing.T) {
	var r bits.Reader
	r.Rebind([]byte{0x7F, 0x00, 0x00, 0x00})
	var h Header
	st, err := h.Decode(&r)
	if st != StatusError || err == nil {
		t.Fatalf("status = %v, err = %v, want error", st, err)
	}
}

func TestStreamInfoDecode(t *testing.T) {
	var r bits.Reader
	data := []byte{
		0x10, 0x00, // min block size 4096
		0x10, 0x00, // max block size 4096
		0x00, 0x00, 0x10, // min frame size
		0x00, 0x00, 0x20, // max frame size
		// sample_rate(20)=44100, nchannels-1(3)=1, bps-1(5)=15, samples(36)=0
		0x0A, 0xC4, 0x42, 0xF0, 0x00, 0x00, 0x00, 0x00,
	}
	r.Rebind(data)
	var si StreamInfo
	if _, st, err := si.SampleRateField(&r); st != StatusOK || err != nil {
		t.Fatalf("SampleRateField: status=%v err=%v", st, err)
	}
	if si.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", si.SampleRate)
	}
	if si.NChannels != 2 {
		t.Errorf("NChannels = %d, want 2", si.NChannels)
	}
	if si.BitsPerSample != 16 {
		t.Errorf("BitsPerSample = %d, want 16", si.BitsPerSample)
	}
	if si.MinBlockSize != 4096 {
		t.Errorf("MinBlockSize = %d, want 4096 (skip-forward must run earlier fields)", si.MinBlockSize)
	}
}

func TestStreamInfoMD5Iteration(t *testing.T) {
	var r bits.Reader
	data := make([]byte, 18)
	data[0], data[1] = 0x10, 0x00
	data[2], data[3] = 0x10, 0x00
	data[10], data[11], data[12], data[13] = 0x0A, 0xC4, 0x42, 0xF0 // 44100 Hz, 2 channels, 16 bps
	md5 := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	full := append(append([]byte{}, data...), md5...)
	r.Rebind(full)
	var si StreamInfo
	for i := 0; i < 16; i++ {
		b, st, err := si.MD5Next(&r)
		if err != nil || st != StatusOK {
			t.Fatalf("MD5Next[%d]: status=%v err=%v", i, st, err)
		}
		if b != md5[i] {
			t.Errorf("MD5Next[%d] = %d, want %d", i, b, md5[i])
		}
	}
	_, st, _ := si.MD5Next(&r)
	if st != StatusEnd {
		t.Errorf("MD5Next after 16 bytes = %v, want end", st)
	}
}

func TestPictureZeroByteData(t *testing.T) {
	// type=3, mime_length=0, desc_length=0, width/height/depth/count=0,
	// data_length=0.
	var r bits.Reader
	r.Rebind([]byte{
		0, 0, 0, 3,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
	var p Picture
	_, st, err := p.DataLengthField(&r)
	if err != nil || st != StatusOK {
		t.Fatalf("DataLengthField: status=%v err=%v", st, err)
	}
	_, st, err = p.DataNext(&r)
	if err != nil || st != StatusEnd {
		t.Fatalf("DataNext on empty picture: status=%v err=%v, want end", st, err)
	}
}

func TestVorbisCommentTagIteration(t *testing.T) {
	// vendor_length=0, vendor="", total=1, tag "A=1" (length 3).
	var r bits.Reader
	data := []byte{
		0, 0, 0, 0, // vendor length (LE) = 0
		1, 0, 0, 0, // total = 1 (LE)
		3, 0, 0, 0, // tag length = 3 (LE)
		'A', '=', '1',
	}
	r.Rebind(data)
	var vc VorbisComment
	name, value, st, err := vc.NextTag(&r)
	if err != nil || st != StatusOK {
		t.Fatalf("NextTag: status=%v err=%v", st, err)
	}
	if name != "A" || value != "1" {
		t.Errorf("NextTag = (%q, %q), want (A, 1)", name, value)
	}
	_, _, st, _ = vc.NextTag(&r)
	if st != StatusEnd {
		t.Errorf("NextTag after last tag = %v, want end", st)
	}
}

func TestReaderResumability(t *testing.T) {
	// Feed the STREAMINFO sample-rate word one byte at a time; each partial
	// call must report StatusContinue without losing already-read bits.
	data := []byte{0x0A, 0xC4, 0x4F, 0x00, 0x00, 0x00, 0x00, 0x00}
	var r bits.Reader
	var si StreamInfo
	si.step = 4 // pretend the four preceding fields are already decoded
	for i := 0; i < len(data)-1; i++ {
		r.Rebind(data[i : i+1])
		if _, st, _ := si.SampleRateField(&r); st != StatusContinue {
			t.Fatalf("byte %d: status = %v, want continue", i, st)
		}
	}
	r.Rebind(data[len(data)-1:])
	if _, st, err := si.SampleRateField(&r); st != StatusOK || err != nil {
		t.Fatalf("final byte: status=%v err=%v", st, err)
	}
	if si.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", si.SampleRate)
	}
}
