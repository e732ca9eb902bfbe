// Package pcmwav packs decoded FLAC channel buffers into interleaved PCM and
// streams them into a WAV container using go-audio/wav.
package pcmwav

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/mewkiz/miniflac/meta"
)

// wavAudioFormatPCM is the WAVE_FORMAT_PCM tag go-audio/wav expects for
// uncompressed integer samples.
const wavAudioFormatPCM = 1

// Writer interleaves each decoded frame and writes it through a wav.Encoder.
// One Writer handles one FLAC stream's worth of audio; its channel count,
// sample rate and bit depth are fixed at construction, from that stream's
// STREAMINFO block.
type Writer struct {
	enc        *wav.Encoder
	nchannels  int
	sampleRate int
	bitDepth   int
	scratch    []int
}

// NewWriter returns a Writer that encodes audio matching si into w. w must
// support Seek, since wav.Encoder rewrites the RIFF and data chunk sizes on
// Close.
func NewWriter(w io.WriteSeeker, si *meta.StreamInfo) *Writer {
	nchannels := int(si.NChannels)
	sampleRate := int(si.SampleRate)
	bitDepth := int(si.BitsPerSample)
	return &Writer{
		enc:        wav.NewEncoder(w, sampleRate, bitDepth, nchannels, wavAudioFormatPCM),
		nchannels:  nchannels,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
	}
}

// WriteFrame interleaves one frame's per-channel sample slices (in the
// left-to-right order miniflac.Decoder.Decode populates them) and writes
// them through the WAV encoder.
func (w *Writer) WriteFrame(channels [][]int32) error {
	if len(channels) == 0 {
		return nil
	}
	n := len(channels[0])
	total := n * w.nchannels
	if cap(w.scratch) < total {
		w.scratch = make([]int, total)
	}
	w.scratch = w.scratch[:total]
	for i := 0; i < n; i++ {
		for ch := 0; ch < w.nchannels; ch++ {
			w.scratch[i*w.nchannels+ch] = int(channels[ch][i])
		}
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.nchannels,
			SampleRate:  w.sampleRate,
		},
		Data:           w.scratch,
		SourceBitDepth: w.bitDepth,
	}
	if err := w.enc.Write(buf); err != nil {
		return errors.Wrap(err, "pcmwav: writing frame")
	}
	return nil
}

// Close finalizes the WAV container's chunk sizes. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	return errors.Wrap(w.enc.Close(), "pcmwav: closing encoder")
}
