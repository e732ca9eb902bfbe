// Package ogg implements resumable decoding of the Ogg container's physical
// page framing, as used by Ogg-encapsulated FLAC streams. It has no notion
// of FLAC itself; the miniflac root package uses it to pull out the raw
// packets a native FLAC decoder consumes.
//
// ref: https://www.xiph.org/ogg/doc/framing.html
package ogg

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// Status is shared with the rest of the miniflac core.
type Status = bits.Status

const (
	StatusOK       = bits.StatusOK
	StatusContinue = bits.StatusContinue
	StatusEnd      = bits.StatusEnd
	StatusError    = bits.StatusError
)

// Header type flags.
const (
	FlagContinued       = 0x01 // page continues a packet begun on the previous page
	FlagBeginningOfStream = 0x02
	FlagEndOfStream     = 0x04
)

var capturePattern = [4]byte{'O', 'g', 'g', 'S'}

// Page is one physical Ogg page: its header fields plus the packets fully
// or partially contained in its payload. Packets is indexed in page order;
// if HeaderType&FlagContinued is set, Packets[0] is the tail of a packet
// begun on a previous page and must be appended to that packet's
// accumulated bytes by the caller. If the final lacing value is 255, the
// last entry of Packets continues onto the next page and is incomplete.
type Page struct {
	Version         uint8
	HeaderType      uint8
	GranulePosition int64
	SerialNumber    uint32
	SequenceNumber  uint32
	Checksum        uint32
	SegmentTable    []uint8
	Packets         [][]byte
	// Incomplete reports whether the last entry of Packets is unterminated
	// (the segment table's final lacing value was 255) and continues on
	// the next page.
	Incomplete bool

	step      int
	capturePos int
	field     leField
	crc       uint32

	segIdx     int
	pktRunning int

	content    []byte
	contentPos int
	totalSize  int
}

func (p *Page) IsBeginningOfStream() bool { return p.HeaderType&FlagBeginningOfStream != 0 }
func (p *Page) IsEndOfStream() bool       { return p.HeaderType&FlagEndOfStream != 0 }
func (p *Page) IsContinued() bool         { return p.HeaderType&FlagContinued != 0 }

// Reset clears the page so it can be reused to decode the next one.
func (p *Page) Reset() {
	*p = Page{}
}

type leField struct {
	n     int
	done  int
	value uint64
}

func (f *leField) reset(n int) { f.n, f.done, f.value = n, 0, 0 }

// readLE pulls n little-endian bytes (already set up via field.reset),
// folding each into the page CRC. zeroForCRC feeds a zero byte to the CRC
// instead of the real one, used only for the checksum field itself, which
// the writer computed with that field zeroed.
func (p *Page) readLE(r *bits.Reader, zeroForCRC bool) (Status, error) {
	for p.field.done < p.field.n {
		if !r.FillNoCRC(8) {
			return StatusContinue, nil
		}
		b := byte(r.Read(8))
		if zeroForCRC {
			p.crc = crcUpdate(p.crc, 0)
		} else {
			p.crc = crcUpdate(p.crc, b)
		}
		p.field.value |= uint64(b) << (8 * uint(p.field.done))
		p.field.done++
	}
	return StatusOK, nil
}

// Decode parses one Ogg page from r. It may be called repeatedly across
// StatusContinue as more input is bound.
func (p *Page) Decode(r *bits.Reader) (Status, error) {
	for p.step < 11 {
		switch p.step {
		case 0: // capture pattern
			for p.capturePos < 4 {
				if !r.FillNoCRC(8) {
					return StatusContinue, nil
				}
				b := byte(r.Read(8))
				if b != capturePattern[p.capturePos] {
					return StatusError, fmt.Errorf("ogg: missing capture pattern")
				}
				p.crc = crcUpdate(p.crc, b)
				p.capturePos++
			}
			p.field.reset(1)
		case 1: // version
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			p.Version = uint8(p.field.value)
			if p.Version != 0 {
				return StatusError, fmt.Errorf("ogg: unsupported stream structure version %d", p.Version)
			}
			p.field.reset(1)
		case 2: // header type flags
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			p.HeaderType = uint8(p.field.value)
			p.field.reset(8)
		case 3: // granule position
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			p.GranulePosition = int64(p.field.value)
			p.field.reset(4)
		case 4: // serial number
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			p.SerialNumber = uint32(p.field.value)
			p.field.reset(4)
		case 5: // sequence number
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			p.SequenceNumber = uint32(p.field.value)
			p.field.reset(4)
		case 6: // checksum (fed to CRC as zero, per the Ogg spec)
			if st, err := p.readLE(r, true); st != StatusOK {
				return st, err
			}
			p.Checksum = uint32(p.field.value)
			p.field.reset(1)
		case 7: // page_segments count
			if st, err := p.readLE(r, false); st != StatusOK {
				return st, err
			}
			n := int(p.field.value)
			p.SegmentTable = make([]uint8, 0, n)
			p.segIdx = 0
		case 8: // segment table (lacing values)
			for p.segIdx < cap(p.SegmentTable) {
				if !r.FillNoCRC(8) {
					return StatusContinue, nil
				}
				b := byte(r.Read(8))
				p.crc = crcUpdate(p.crc, b)
				p.SegmentTable = append(p.SegmentTable, b)
				p.segIdx++
			}
			p.totalSize = 0
			for _, s := range p.SegmentTable {
				p.totalSize += int(s)
			}
			p.content = make([]byte, p.totalSize)
			p.contentPos = 0
		case 9: // page content
			for p.contentPos < p.totalSize {
				if !r.FillNoCRC(8) {
					return StatusContinue, nil
				}
				b := byte(r.Read(8))
				p.crc = crcUpdate(p.crc, b)
				p.content[p.contentPos] = b
				p.contentPos++
			}
		case 10: // assemble packets; the checksum is computed but not enforced
			p.assemblePackets()
		}
		p.step++
	}
	return StatusOK, nil
}

func (p *Page) assemblePackets() {
	var packets [][]byte
	offset, size := 0, 0
	for i, s := range p.SegmentTable {
		size += int(s)
		if s < 0xFF {
			packets = append(packets, p.content[offset:offset+size])
			offset += size
			size = 0
		}
		if i == len(p.SegmentTable)-1 && s == 0xFF {
			packets = append(packets, p.content[offset:offset+size])
			p.Incomplete = true
		}
	}
	if len(packets) == 0 {
		packets = [][]byte{p.content[:0]}
	}
	p.Packets = packets
}
