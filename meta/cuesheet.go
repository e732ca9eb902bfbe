package meta

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// A CueSheet describes how tracks are laid out within a FLAC stream.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_cuesheet
type CueSheet struct {
	// Media catalog number, ASCII printable characters 0x20-0x7e, NUL padded.
	MCN string
	// Number of lead-in samples. Meaningful only for CD-DA cue sheets; 0
	// otherwise.
	NLeadInSamples uint64
	// Specifies if the cue sheet corresponds to a Compact Disc.
	IsCompactDisc bool
	// Number of tracks, including the mandatory lead-out track.
	NTracks uint8

	step     int
	mcn      byteAccum
	reserved zeroRun

	track     CueSheetTrack
	trackIdx  int
	trackStep int
	isrc      byteAccum
	trackZero zeroRun

	idx       CueSheetTrackIndex
	idxStep   int
	idxZero   zeroRun
	indexRead uint8
}

// CueSheetTrack contains the start offset of a track and other track
// specific metadata. Index points are iterated separately via
// CueSheet.NextIndex.
type CueSheetTrack struct {
	// Track offset in samples, relative to the beginning of the stream.
	Offset uint64
	// Track number; never 0, unique within the cue sheet.
	Num uint8
	// International Standard Recording Code, or empty if absent.
	ISRC string
	// Specifies if the track contains audio or data.
	IsAudio bool
	// Specifies if the track has been recorded with pre-emphasis.
	HasPreEmphasis bool
	// Number of track index points; 0 only for the lead-out track.
	NIndices uint8
}

// A CueSheetTrackIndex specifies a position within a track.
type CueSheetTrackIndex struct {
	// Index point offset in samples, relative to the track offset.
	Offset uint64
	// Index point number, unique and increasing within a track.
	Num uint8
}

// zeroRun verifies and skips a run of n reserved bytes, which must all be
// zero, persisting how many have been checked so a suspension mid-run
// resumes without re-reading bytes already consumed.
type zeroRun struct {
	n, pos int
}

func (z *zeroRun) reset(n int) {
	z.n, z.pos = n, 0
}

func (z *zeroRun) step(r *bits.Reader) (Status, error) {
	for z.pos < z.n {
		if !r.FillNoCRC(8) {
			return StatusContinue, nil
		}
		if r.Read(8) != 0 {
			return StatusError, fmt.Errorf("meta: reserved bytes must be 0")
		}
		z.pos++
	}
	return StatusOK, nil
}

func trimNUL(buf []byte) string {
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func (cs *CueSheet) ensure(r *bits.Reader, target int) (Status, error) {
	for cs.step < target {
		switch cs.step {
		case 0:
			if cs.mcn.buf == nil {
				cs.mcn.init(128)
			}
			st, err := cs.mcn.step(r)
			if st != StatusOK {
				return st, err
			}
			for _, c := range cs.mcn.buf {
				if c != 0 && (c < 0x20 || c > 0x7E) {
					return StatusError, fmt.Errorf("meta: invalid character 0x%02X in cue sheet MCN", c)
				}
			}
			cs.MCN = trimNUL(cs.mcn.buf)
		case 1:
			if !r.FillNoCRC(64) {
				return StatusContinue, nil
			}
			cs.NLeadInSamples = r.Read(64)
		case 2:
			if !r.FillNoCRC(8) {
				return StatusContinue, nil
			}
			b := r.Read(8)
			cs.IsCompactDisc = b&0x80 != 0
			if b&0x7F != 0 {
				return StatusError, fmt.Errorf("meta: cue sheet reserved bits must be 0")
			}
			if !cs.IsCompactDisc && cs.NLeadInSamples != 0 {
				return StatusError, fmt.Errorf("meta: non CD-DA cue sheet must have 0 lead-in samples, got %d", cs.NLeadInSamples)
			}
			cs.reserved.reset(258)
		case 3:
			if st, err := cs.reserved.step(r); st != StatusOK {
				return st, err
			}
		case 4:
			if !r.FillNoCRC(8) {
				return StatusContinue, nil
			}
			cs.NTracks = uint8(r.Read(8))
			if cs.NTracks < 1 {
				return StatusError, fmt.Errorf("meta: cue sheet must have at least one (lead-out) track")
			}
			if cs.IsCompactDisc && cs.NTracks > 100 {
				return StatusError, fmt.Errorf("meta: CD-DA cue sheet has too many tracks: %d", cs.NTracks)
			}
		}
		cs.step++
	}
	return StatusOK, nil
}

// MCNField returns the media catalog number.
func (cs *CueSheet) MCNField(r *bits.Reader) (string, Status, error) {
	st, err := cs.ensure(r, 1)
	return cs.MCN, st, err
}

// LeadInField returns the lead-in sample count.
func (cs *CueSheet) LeadInField(r *bits.Reader) (uint64, Status, error) {
	st, err := cs.ensure(r, 2)
	return cs.NLeadInSamples, st, err
}

// IsCompactDiscField returns the Compact Disc flag.
func (cs *CueSheet) IsCompactDiscField(r *bits.Reader) (bool, Status, error) {
	st, err := cs.ensure(r, 4)
	return cs.IsCompactDisc, st, err
}

// TrackCountField returns the declared track count.
func (cs *CueSheet) TrackCountField(r *bits.Reader) (uint8, Status, error) {
	st, err := cs.ensure(r, 5)
	return cs.NTracks, st, err
}

// NextTrack decodes and returns the next track's scalar fields, or
// StatusEnd once NTracks tracks have been returned. Call NextIndex exactly
// NIndices times for the returned track before calling NextTrack again.
func (cs *CueSheet) NextTrack(r *bits.Reader) (CueSheetTrack, Status, error) {
	if _, st, err := cs.TrackCountField(r); st != StatusOK {
		return CueSheetTrack{}, st, err
	}
	if cs.trackIdx >= int(cs.NTracks) {
		return CueSheetTrack{}, StatusEnd, nil
	}
	isLast := cs.trackIdx == int(cs.NTracks)-1
	for cs.trackStep < 7 {
		switch cs.trackStep {
		case 0:
			if !r.FillNoCRC(64) {
				return CueSheetTrack{}, StatusContinue, nil
			}
			cs.track.Offset = r.Read(64)
			if cs.IsCompactDisc && cs.track.Offset%588 != 0 {
				return CueSheetTrack{}, StatusError, fmt.Errorf("meta: CD-DA track offset %d not divisible by 588", cs.track.Offset)
			}
		case 1:
			if !r.FillNoCRC(8) {
				return CueSheetTrack{}, StatusContinue, nil
			}
			cs.track.Num = uint8(r.Read(8))
			if cs.track.Num == 0 {
				return CueSheetTrack{}, StatusError, fmt.Errorf("meta: cue sheet track number 0 not allowed")
			}
		case 2:
			if cs.isrc.buf == nil {
				cs.isrc.init(12)
			}
			st, err := cs.isrc.step(r)
			if st != StatusOK {
				return CueSheetTrack{}, st, err
			}
			cs.track.ISRC = trimNUL(cs.isrc.buf)
		case 3:
			if !r.FillNoCRC(8) {
				return CueSheetTrack{}, StatusContinue, nil
			}
			b := r.Read(8)
			cs.track.IsAudio = b&0x80 == 0
			cs.track.HasPreEmphasis = b&0x40 != 0
			if b&0x3F != 0 {
				return CueSheetTrack{}, StatusError, fmt.Errorf("meta: cue sheet track reserved bits must be 0")
			}
			cs.trackZero.reset(13)
		case 4:
			if st, err := cs.trackZero.step(r); st != StatusOK {
				return CueSheetTrack{}, st, err
			}
		case 5:
			if !r.FillNoCRC(8) {
				return CueSheetTrack{}, StatusContinue, nil
			}
			cs.track.NIndices = uint8(r.Read(8))
			if isLast {
				if cs.track.NIndices != 0 {
					return CueSheetTrack{}, StatusError, fmt.Errorf("meta: lead-out track must have 0 index points")
				}
			} else if cs.track.NIndices < 1 {
				return CueSheetTrack{}, StatusError, fmt.Errorf("meta: track must have at least one index point")
			}
		}
		cs.trackStep++
	}
	return cs.track, StatusOK, nil
}

// NextIndex decodes and returns the next index point of the track most
// recently returned by NextTrack, or StatusEnd once all of that track's
// index points have been returned (which also advances the cursor so the
// next NextTrack call can proceed).
func (cs *CueSheet) NextIndex(r *bits.Reader) (CueSheetTrackIndex, Status, error) {
	if cs.indexRead >= cs.track.NIndices {
		cs.trackIdx++
		cs.trackStep = 0
		cs.isrc = byteAccum{}
		cs.indexRead = 0
		return CueSheetTrackIndex{}, StatusEnd, nil
	}
	for cs.idxStep < 3 {
		switch cs.idxStep {
		case 0:
			if !r.FillNoCRC(64) {
				return CueSheetTrackIndex{}, StatusContinue, nil
			}
			cs.idx.Offset = r.Read(64)
		case 1:
			if !r.FillNoCRC(8) {
				return CueSheetTrackIndex{}, StatusContinue, nil
			}
			cs.idx.Num = uint8(r.Read(8))
			cs.idxZero.reset(3)
		case 2:
			if st, err := cs.idxZero.step(r); st != StatusOK {
				return CueSheetTrackIndex{}, st, err
			}
		}
		cs.idxStep++
	}
	cs.indexRead++
	cs.idxStep = 0
	return cs.idx, StatusOK, nil
}
