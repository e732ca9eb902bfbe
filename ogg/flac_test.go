package ogg

import (
	"testing"

	"github.com/mewkiz/miniflac/internal/bits"
)

func TestIsFLACMapping(t *testing.T) {
	if !IsFLACMapping(append(flacMagic[:], 1, 0)) {
		t.Error("expected magic match")
	}
	if IsFLACMapping([]byte{0x7F, 'F', 'L', 'A', 'X'}) {
		t.Error("expected no match")
	}
}

func TestPacketReaderSinglePage(t *testing.T) {
	data := buildPage(FlagBeginningOfStream|FlagEndOfStream, -1, 1, 0,
		[]byte{5, 3}, []byte("helloabc"))

	var r bits.Reader
	r.Rebind(data)
	var pr PacketReader

	pkt, st, err := pr.NextPacket(&r, nil)
	if err != nil || st != StatusOK {
		t.Fatalf("packet 1: status=%v err=%v", st, err)
	}
	if string(pkt) != "hello" {
		t.Errorf("packet 1 = %q, want hello", pkt)
	}

	pkt, st, err = pr.NextPacket(&r, nil)
	if err != nil || st != StatusOK {
		t.Fatalf("packet 2: status=%v err=%v", st, err)
	}
	if string(pkt) != "abc" {
		t.Errorf("packet 2 = %q, want abc", pkt)
	}

	_, st, err = pr.NextPacket(&r, nil)
	if err != nil || st != StatusEnd {
		t.Fatalf("after last packet: status=%v err=%v, want end", st, err)
	}
}

func TestPacketReaderSpansPages(t *testing.T) {
	// page1 carries a single 255-byte lacing value (packet continues onto
	// the next page); page2 finishes it.
	first := make([]byte, 255)
	for i := range first {
		first[i] = byte('a' + i%26)
	}
	page1 := buildPage(FlagBeginningOfStream, -1, 1, 0, []byte{255}, first)
	rest := []byte("TAIL")
	page2 := buildPage(FlagContinued|FlagEndOfStream, 10, 1, 1, []byte{byte(len(rest))}, rest)

	var r bits.Reader
	var pr PacketReader

	r.Rebind(page1)
	_, st, err := pr.NextPacket(&r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusContinue {
		t.Fatalf("after page 1 alone: status = %v, want continue (packet not yet closed)", st)
	}

	r.Rebind(page2)
	pkt, st, err := pr.NextPacket(&r, nil)
	if err != nil || st != StatusOK {
		t.Fatalf("status=%v err=%v", st, err)
	}
	want := string(first) + "TAIL"
	if string(pkt) != want {
		t.Errorf("packet has len %d, want len %d", len(pkt), len(want))
	}

	_, st, err = pr.NextPacket(&r, nil)
	if err != nil || st != StatusEnd {
		t.Fatalf("after final packet: status=%v err=%v, want end", st, err)
	}
}

// TestPacketReaderSkipsNonFLACFirstPage covers spec Concrete Scenario 5: a
// physical Ogg stream whose first logical stream is not FLAC must be
// skipped (not bound, not errored) so the search can bind to the next
// logical stream that does carry a FLAC identification packet, even though
// it has a different serial number.
func TestPacketReaderSkipsNonFLACFirstPage(t *testing.T) {
	notFLAC := buildPage(FlagBeginningOfStream, -1, 0x1111, 0,
		[]byte{5}, []byte("other"))
	flacID := append(append([]byte{}, flacMagic[:]...), 1, 0)
	isFLAC := buildPage(FlagBeginningOfStream, -1, 0x2222, 0,
		[]byte{byte(len(flacID))}, flacID)

	var r bits.Reader
	var pr PacketReader

	r.Rebind(notFLAC)
	_, st, err := pr.NextPacket(&r, IsFLACMapping)
	if err != nil {
		t.Fatal(err)
	}
	if st != StatusContinue {
		t.Fatalf("after non-FLAC page: status = %v, want continue (page skipped, still searching)", st)
	}
	if pr.bound {
		t.Fatal("bound to the non-FLAC page's serial number")
	}

	r.Rebind(isFLAC)
	pkt, st, err := pr.NextPacket(&r, IsFLACMapping)
	if err != nil || st != StatusOK {
		t.Fatalf("status=%v err=%v", st, err)
	}
	if string(pkt) != string(flacID) {
		t.Errorf("packet = %q, want the FLAC identification packet", pkt)
	}
	if pr.SerialNumber != 0x2222 {
		t.Errorf("SerialNumber = %#x, want 0x2222 (the accepted stream, not the skipped one)", pr.SerialNumber)
	}
}

// TestPacketReaderRestartedOnRepeatedBOS covers a begin-of-stream page
// arriving again on the already-bound serial number: a logical-stream
// restart that reuses the serial, which must surface via Restarted rather
// than being folded silently into the ongoing stream.
func TestPacketReaderRestartedOnRepeatedBOS(t *testing.T) {
	page1 := buildPage(FlagBeginningOfStream, -1, 7, 0, []byte{3}, []byte("one"))
	page2 := buildPage(FlagBeginningOfStream, -1, 7, 0, []byte{3}, []byte("two"))

	var r bits.Reader
	var pr PacketReader

	r.Rebind(page1)
	_, st, err := pr.NextPacket(&r, nil)
	if err != nil || st != StatusOK {
		t.Fatalf("page 1: status=%v err=%v", st, err)
	}
	if pr.Restarted {
		t.Error("Restarted = true on the binding page itself, want false")
	}

	r.Rebind(page2)
	pkt, st, err := pr.NextPacket(&r, nil)
	if err != nil || st != StatusOK {
		t.Fatalf("page 2: status=%v err=%v", st, err)
	}
	if !pr.Restarted {
		t.Error("Restarted = false after a repeated BOS on the bound serial, want true")
	}
	if string(pkt) != "two" {
		t.Errorf("packet = %q, want two", pkt)
	}
}
