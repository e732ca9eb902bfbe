package pcmwav

import (
	"testing"

	"github.com/mewkiz/miniflac/meta"
)

// memWriteSeeker is an in-memory io.WriteSeeker, standing in for a real
// file so wav.Encoder can seek back and patch its RIFF/data chunk sizes on
// Close.
type memWriteSeeker struct {
	buf []byte
	pos int64
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		m.pos = offset
	case 1:
		m.pos += offset
	case 2:
		m.pos = int64(len(m.buf)) + offset
	}
	return m.pos, nil
}

func TestWriteFrameInterleavesChannels(t *testing.T) {
	si := &meta.StreamInfo{NChannels: 2, SampleRate: 44100, BitsPerSample: 16}
	w := NewWriter(&memWriteSeeker{}, si)

	left := []int32{1, 2, 3}
	right := []int32{10, 20, 30}
	if err := w.WriteFrame([][]int32{left, right}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	want := []int{1, 10, 2, 20, 3, 30}
	if len(w.scratch) != len(want) {
		t.Fatalf("scratch length = %d, want %d", len(w.scratch), len(want))
	}
	for i, v := range want {
		if w.scratch[i] != v {
			t.Errorf("scratch[%d] = %d, want %d", i, w.scratch[i], v)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWriteFrameEmptyChannelsIsNoop(t *testing.T) {
	si := &meta.StreamInfo{NChannels: 1, SampleRate: 8000, BitsPerSample: 8}
	w := NewWriter(&memWriteSeeker{}, si)
	if err := w.WriteFrame(nil); err != nil {
		t.Fatalf("WriteFrame(nil): %v", err)
	}
}

func TestWriteFrameReusesScratchAcrossCalls(t *testing.T) {
	si := &meta.StreamInfo{NChannels: 1, SampleRate: 8000, BitsPerSample: 8}
	w := NewWriter(&memWriteSeeker{}, si)

	if err := w.WriteFrame([][]int32{{1, 2, 3, 4}}); err != nil {
		t.Fatalf("WriteFrame (4 samples): %v", err)
	}
	bigScratch := w.scratch
	if err := w.WriteFrame([][]int32{{5, 6}}); err != nil {
		t.Fatalf("WriteFrame (2 samples): %v", err)
	}
	if len(w.scratch) != 2 {
		t.Fatalf("scratch length = %d, want 2 (trimmed from prior capacity)", len(w.scratch))
	}
	if cap(w.scratch) != cap(bigScratch) {
		t.Errorf("scratch capacity shrank across calls; want the larger backing array reused")
	}
	if w.scratch[0] != 5 || w.scratch[1] != 6 {
		t.Errorf("scratch = %v, want [5 6]", w.scratch)
	}
}
