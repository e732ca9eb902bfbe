package miniflac

import "testing"

// minimalStreamInfoOnly returns a native FLAC stream containing only the
// fLaC marker and a single, last STREAMINFO block: sample_rate=44100,
// nchannels=2, bps=16, no audio frames.
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

func TestSyncDecodesStreamInfo(t *testing.T) {
	data := minimalStreamInfoOnly()
	d := NewDecoder(ContainerUnknown)
	st, n, err := d.Sync(data)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st != StatusOK {
		t.Fatalf("status = %v, want ok", st)
	}
	if n != len(data) {
		t.Fatalf("consumed = %d, want %d (marker+header+body all drained)", n, len(data))
	}
	si := d.CurrentBlock().StreamInfo
	if si == nil {
		t.Fatal("CurrentBlock().StreamInfo = nil")
	}
	if si.SampleRate != 44100 || si.NChannels != 2 || si.BitsPerSample != 16 {
		t.Errorf("StreamInfo = %+v, want sample_rate=44100 nchannels=2 bps=16", si)
	}
	if d.Container != ContainerNative {
		t.Errorf("Container = %v, want native (probed from leading 'f')", d.Container)
	}
	if d.Phase != PhaseMetadataOrFrame {
		t.Errorf("Phase = %v, want PhaseMetadataOrFrame (no sync code peeked yet)", d.Phase)
	}
}

func TestSyncOneByteAtATime(t *testing.T) {
	data := minimalStreamInfoOnly()
	d := NewDecoder(ContainerNative)
	for i, b := range data[:len(data)-1] {
		st, n, err := d.Sync([]byte{b})
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if st != StatusContinue {
			t.Fatalf("byte %d: status = %v, want continue", i, st)
		}
		if n != 1 {
			t.Fatalf("byte %d: consumed = %d, want 1", i, n)
		}
	}
	st, _, err := d.Sync(data[len(data)-1:])
	if err != nil {
		t.Fatalf("final byte: %v", err)
	}
	if st != StatusOK {
		t.Fatalf("final byte: status = %v, want ok", st)
	}
	if d.CurrentBlock().StreamInfo.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", d.CurrentBlock().StreamInfo.SampleRate)
	}
}

func TestProbeRejectsUnknownByte(t *testing.T) {
	d := NewDecoder(ContainerUnknown)
	_, _, err := d.Sync([]byte{0x00})
	if err == nil {
		t.Fatal("expected an error for a byte that is neither 'f' nor 'O'")
	}
}

func TestResetReturnsToRequestedPhase(t *testing.T) {
	data := minimalStreamInfoOnly()
	d := NewDecoder(ContainerNative)
	if _, _, err := d.Sync(data); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	d.Reset(PhaseStreamMarkerOrFrame)
	if d.Phase != PhaseStreamMarkerOrFrame {
		t.Errorf("Phase after Reset = %v, want PhaseStreamMarkerOrFrame", d.Phase)
	}
	if d.CurrentBlock().StreamInfo != nil {
		t.Error("CurrentBlock().StreamInfo survived Reset, want cleared")
	}
}
