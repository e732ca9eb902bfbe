package ogg

import (
	"testing"

	"github.com/mewkiz/miniflac/internal/bits"
)

// buildPage encodes a single Ogg page carrying the given packet data, with
// a correctly computed CRC-32.
func buildPage(headerType byte, granule int64, serial, seq uint32, segments []byte, content []byte) []byte {
	buf := make([]byte, 0, 27+len(segments)+len(content))
	buf = append(buf, capturePattern[:]...)
	buf = append(buf, 0) // version
	buf = append(buf, headerType)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(granule>>(8*i)))
	}
	for i := 0; i < 4; i++ {
		buf = append(buf, byte(serial>>(8*i)))
	}
	for i := 0; i < 4; i++ {
		buf = append(buf, byte(seq>>(8*i)))
	}
	checksumOffset := len(buf)
	buf = append(buf, 0, 0, 0, 0) // checksum placeholder
	buf = append(buf, byte(len(segments)))
	buf = append(buf, segments...)
	buf = append(buf, content...)

	var crc uint32
	for i, b := range buf {
		if i >= checksumOffset && i < checksumOffset+4 {
			crc = crcUpdate(crc, 0)
		} else {
			crc = crcUpdate(crc, b)
		}
	}
	buf[checksumOffset] = byte(crc)
	buf[checksumOffset+1] = byte(crc >> 8)
	buf[checksumOffset+2] = byte(crc >> 16)
	buf[checksumOffset+3] = byte(crc >> 24)
	return buf
}

func TestPageDecodeSinglePacket(t *testing.T) {
	content := []byte("hello flac")
	data := buildPage(FlagBeginningOfStream, -1, 0xABCD, 0, []byte{byte(len(content))}, content)

	var r bits.Reader
	r.Rebind(data)
	var p Page
	st, err := p.Decode(&r)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if p.SerialNumber != 0xABCD {
		t.Errorf("SerialNumber = %#x, want 0xabcd", p.SerialNumber)
	}
	if !p.IsBeginningOfStream() {
		t.Error("IsBeginningOfStream() = false, want true")
	}
	if len(p.Packets) != 1 || string(p.Packets[0]) != "hello flac" {
		t.Errorf("Packets = %v, want [hello flac]", p.Packets)
	}
}

// TestPageDecodeIgnoresBadChecksum covers the Ogg page CRC-32 being computed
// and exposed but not enforced: a page whose checksum field doesn't match
// the computed value still decodes successfully.
func TestPageDecodeIgnoresBadChecksum(t *testing.T) {
	data := buildPage(0, -1, 1, 0, []byte{3}, []byte("abc"))
	data[len(data)-1] ^= 0xFF // corrupt content after checksum was computed

	var r bits.Reader
	r.Rebind(data)
	var p Page
	st, err := p.Decode(&r)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusOK {
		t.Fatalf("status = %v, want ok (checksum mismatch is not fatal)", st)
	}
	want := []byte{'a', 'b', 'c' ^ 0xFF}
	if string(p.Packets[0]) != string(want) {
		t.Errorf("Packets[0] = %q, want %q (corrupted content passed through byte-for-byte)", p.Packets[0], want)
	}
}

func TestPageDecodeResumability(t *testing.T) {
	content := []byte("abcdefgh")
	data := buildPage(0, 100, 42, 7, []byte{byte(len(content))}, content)

	var r bits.Reader
	var p Page
	for i := 0; i < len(data)-1; i++ {
		r.Rebind(data[i : i+1])
		st, err := p.Decode(&r)
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if st != StatusContinue {
			t.Fatalf("byte %d: status = %v, want continue", i, st)
		}
	}
	r.Rebind(data[len(data)-1:])
	st, err := p.Decode(&r)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusOK {
		t.Fatalf("final byte: status = %v, want ok", st)
	}
	if string(p.Packets[0]) != "abcdefgh" {
		t.Errorf("Packets[0] = %q, want abcdefgh", p.Packets[0])
	}
}

func TestPageDecodeMultiSegmentPacket(t *testing.T) {
	// A packet of 300 bytes needs two lacing values: 255 then 45.
	content := make([]byte, 300)
	for i := range content {
		content[i] = byte(i)
	}
	data := buildPage(0, -1, 1, 0, []byte{255, 45}, content)

	var r bits.Reader
	r.Rebind(data)
	var p Page
	st, err := p.Decode(&r)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if len(p.Packets) != 1 || len(p.Packets[0]) != 300 {
		t.Fatalf("Packets = %d entries, first len %d; want 1 entry of 300", len(p.Packets), len(p.Packets[0]))
	}
}
