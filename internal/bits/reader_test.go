package bits

import "testing"

func TestReadFields(t *testing.T) {
	// 0xFF 0x80: 1111_1111 1000_0000
	var r Reader
	r.Rebind([]byte{0xFF, 0x80})
	if !r.Fill(9) {
		t.Fatal("expected enough bits")
	}
	if got := r.Read(9); got != 0x1FF {
		t.Errorf("Read(9) = %#x, want 0x1ff", got)
	}
	if r.Len() != 7 {
		t.Errorf("Len() = %d, want 7", r.Len())
	}
}

func TestFillShortDoesNotDoubleConsume(t *testing.T) {
	var r Reader
	r.Rebind([]byte{0xAB})
	if r.Fill(16) {
		t.Fatal("expected short fill")
	}
	if r.Consumed() != 1 {
		t.Errorf("Consumed() = %d, want 1", r.Consumed())
	}
	// Feed the rest; the previously-pulled byte must not be re-read.
	r.Rebind([]byte{0xCD})
	if !r.Fill(16) {
		t.Fatal("expected fill to succeed once more input arrives")
	}
	if got := r.Read(16); got != 0xABCD {
		t.Errorf("Read(16) = %#x, want 0xabcd", got)
	}
}

func TestReadSignedAndAlign(t *testing.T) {
	var r Reader
	r.Rebind([]byte{0b1111_1000})
	if !r.Fill(4) {
		t.Fatal("short fill")
	}
	if got := r.ReadSigned(4); got != -1 {
		t.Errorf("ReadSigned(4) = %d, want -1", got)
	}
	r.Align()
	if r.Len() != 0 {
		t.Errorf("Len() after Align = %d, want 0", r.Len())
	}
}

func TestCRC8MatchesKnownValue(t *testing.T) {
	// A one-byte buffer whose CRC-8 (poly 0x07, init 0) is a fixed,
	// independently-computed value: CRC8 of a single 0x01 byte = 0x07 (the
	// polynomial itself, since init is 0).
	var r Reader
	r.Rebind([]byte{0x01})
	r.Fill(8)
	if r.CRC8() != 0x07 {
		t.Errorf("CRC8() = %#x, want 0x07", r.CRC8())
	}
}

func TestFillCRC16OnlySkipsCRC8(t *testing.T) {
	var r Reader
	r.Rebind([]byte{0x01})
	if !r.FillCRC16Only(8) {
		t.Fatal("expected enough bits")
	}
	if r.CRC8() != 0 {
		t.Errorf("CRC8() = %#x, want 0 (untouched)", r.CRC8())
	}
	if r.CRC16() == 0 {
		t.Errorf("CRC16() = 0, want it updated by the filled byte")
	}
}

func TestResetCRCFoldsLiveBytes(t *testing.T) {
	// When nothing has been consumed yet, resetting the CRC and letting it
	// replay the still-live bytes must reproduce the same CRC: the fold is a
	// no-op on the "CRC as if from here" invariant in this case.
	var r Reader
	r.Rebind([]byte{0x10, 0x20, 0x30})
	r.Fill(24)
	wantCRC8, wantCRC16 := r.CRC8(), r.CRC16()

	r.ResetCRC()
	if r.CRC8() != wantCRC8 || r.CRC16() != wantCRC16 {
		t.Errorf("CRC changed across a no-consumption ResetCRC: got (%#x,%#x), want (%#x,%#x)", r.CRC8(), r.CRC16(), wantCRC8, wantCRC16)
	}

	// After fully consuming and realigning, ResetCRC starts a clean region:
	// feeding the same bytes again from scratch should match a fresh reader.
	r.Discard(24)
	r.ResetCRC()
	var fresh Reader
	fresh.Rebind([]byte{0xAA, 0xBB})
	fresh.Fill(16)
	r.Rebind([]byte{0xAA, 0xBB})
	r.Fill(16)
	if r.CRC8() != fresh.CRC8() || r.CRC16() != fresh.CRC16() {
		t.Errorf("CRC after drain+reset diverged from a fresh reader")
	}
}
