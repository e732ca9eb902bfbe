package meta

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// Picture metadata blocks store pictures associated with the stream, most
// commonly cover art. A stream may contain more than one.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_picture
type Picture struct {
	// Picture type, per the ID3v2 APIC frame. There may be only one each of
	// type 1 (32x32 file icon) and type 2 (other file icon) in a stream.
	PictureType uint32
	// Width in pixels.
	Width uint32
	// Height in pixels.
	Height uint32
	// Color depth in bits per pixel.
	ColorDepth uint32
	// Number of colors used for indexed-color pictures, or 0 otherwise.
	ColorCount uint32
	// Declared length of Data, in bytes.
	DataLength uint32
	// MIME is the picture's MIME type string. Valid once MIMEStringField (or
	// any field accessor after it) has returned StatusOK.
	MIME string
	// Desc is the picture's UTF-8 description string. Valid once
	// DescStringField (or any field accessor after it) has returned
	// StatusOK.
	Desc string

	step int

	mimeLen     uint32
	mimeLenRead bool
	mime        byteAccum

	descLen     uint32
	descLenRead bool
	desc        byteAccum

	dataPos uint32
}

func (p *Picture) ensureScalars(r *bits.Reader, target int) (Status, error) {
	for p.step < target {
		switch p.step {
		case 0:
			if !r.FillNoCRC(32) {
				return StatusContinue, nil
			}
			p.PictureType = uint32(r.Read(32))
			if p.PictureType > 20 {
				return StatusError, fmt.Errorf("meta: reserved picture type %d", p.PictureType)
			}
		case 1:
			if _, st, err := p.DescStringField(r); st != StatusOK {
				return st, err
			}
			v, ok := readBE32(r)
			if !ok {
				return StatusContinue, nil
			}
			p.Width = v
		case 2:
			v, ok := readBE32(r)
			if !ok {
				return StatusContinue, nil
			}
			p.Height = v
		case 3:
			v, ok := readBE32(r)
			if !ok {
				return StatusContinue, nil
			}
			p.ColorDepth = v
		case 4:
			v, ok := readBE32(r)
			if !ok {
				return StatusContinue, nil
			}
			p.ColorCount = v
		case 5:
			v, ok := readBE32(r)
			if !ok {
				return StatusContinue, nil
			}
			p.DataLength = v
		}
		p.step++
	}
	return StatusOK, nil
}

// readBE32 reads a plain big-endian 32-bit field (the bit reader's native
// byte order), used by every PICTURE field except the MIME/description
// strings' byte payloads.
func readBE32(r *bits.Reader) (uint32, bool) {
	if !r.FillNoCRC(32) {
		return 0, false
	}
	return uint32(r.Read(32)), true
}

// MIMELengthField returns the byte length of the MIME type string.
func (p *Picture) MIMELengthField(r *bits.Reader) (uint32, Status, error) {
	if p.mimeLenRead {
		return p.mimeLen, StatusOK, nil
	}
	if _, st, err := p.PictureTypeField(r); st != StatusOK {
		return 0, st, err
	}
	v, ok := readBE32(r)
	if !ok {
		return 0, StatusContinue, nil
	}
	p.mimeLen = v
	p.mimeLenRead = true
	return v, StatusOK, nil
}

// PictureTypeField returns the picture type field.
func (p *Picture) PictureTypeField(r *bits.Reader) (uint32, Status, error) {
	st, err := p.ensureScalars(r, 1)
	return p.PictureType, st, err
}

// MIMEStringField returns the MIME type string. The string must consist of
// printable ASCII characters 0x20-0x7e; a MIME value of "-->" signals that
// Data is a URL rather than picture data.
func (p *Picture) MIMEStringField(r *bits.Reader) (string, Status, error) {
	if _, st, err := p.MIMELengthField(r); st != StatusOK {
		return "", st, err
	}
	if p.mime.buf == nil {
		p.mime.init(int(p.mimeLen))
	}
	st, err := p.mime.step(r)
	if st != StatusOK {
		return "", st, err
	}
	for _, c := range p.mime.buf {
		if c < 0x20 || c > 0x7E {
			return "", StatusError, fmt.Errorf("meta: invalid character 0x%02X in picture MIME type", c)
		}
	}
	p.MIME = string(p.mime.buf)
	return p.MIME, StatusOK, nil
}

// DescLengthField returns the byte length of the UTF-8 description string.
func (p *Picture) DescLengthField(r *bits.Reader) (uint32, Status, error) {
	if p.descLenRead {
		return p.descLen, StatusOK, nil
	}
	if _, st, err := p.MIMEStringField(r); st != StatusOK {
		return 0, st, err
	}
	v, ok := readBE32(r)
	if !ok {
		return 0, StatusContinue, nil
	}
	p.descLen = v
	p.descLenRead = true
	return v, StatusOK, nil
}

// DescStringField returns the picture description string.
func (p *Picture) DescStringField(r *bits.Reader) (string, Status, error) {
	if _, st, err := p.DescLengthField(r); st != StatusOK {
		return "", st, err
	}
	if p.desc.buf == nil {
		p.desc.init(int(p.descLen))
	}
	st, err := p.desc.step(r)
	if st != StatusOK {
		return "", st, err
	}
	p.Desc = string(p.desc.buf)
	return p.Desc, StatusOK, nil
}

// WidthField returns the picture width in pixels.
func (p *Picture) WidthField(r *bits.Reader) (uint32, Status, error) {
	if _, st, err := p.DescStringField(r); st != StatusOK {
		return 0, st, err
	}
	st, err := p.ensureScalars(r, 2)
	return p.Width, st, err
}

// HeightField returns the picture height in pixels.
func (p *Picture) HeightField(r *bits.Reader) (uint32, Status, error) {
	st, err := p.ensureScalars(r, 3)
	return p.Height, st, err
}

// ColorDepthField returns the picture color depth in bits per pixel.
func (p *Picture) ColorDepthField(r *bits.Reader) (uint32, Status, error) {
	st, err := p.ensureScalars(r, 4)
	return p.ColorDepth, st, err
}

// ColorCountField returns the number of colors used, for indexed-color
// pictures, or 0 for non-indexed pictures.
func (p *Picture) ColorCountField(r *bits.Reader) (uint32, Status, error) {
	st, err := p.ensureScalars(r, 5)
	return p.ColorCount, st, err
}

// DataLengthField returns the declared byte length of the picture data.
func (p *Picture) DataLengthField(r *bits.Reader) (uint32, Status, error) {
	st, err := p.ensureScalars(r, 6)
	return p.DataLength, st, err
}

// DataNext returns the next byte of picture data, or StatusEnd once
// DataLength bytes have been returned.
func (p *Picture) DataNext(r *bits.Reader) (byte, Status, error) {
	if _, st, err := p.DataLengthField(r); st != StatusOK {
		return 0, st, err
	}
	if p.dataPos >= p.DataLength {
		return 0, StatusEnd, nil
	}
	if !r.FillNoCRC(8) {
		return 0, StatusContinue, nil
	}
	b := byte(r.Read(8))
	p.dataPos++
	return b, StatusOK, nil
}
