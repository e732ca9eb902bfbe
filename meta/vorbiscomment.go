package meta

import (
	"fmt"
	"strings"

	"github.com/mewkiz/miniflac/internal/bits"
)

// VorbisComment contains a list of name-value pairs, the only officially
// supported tagging mechanism in FLAC.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_vorbis_comment
type VorbisComment struct {
	// Vendor name, as recorded by the encoder.
	Vendor string
	// Total number of tags declared by the block.
	NTags uint32

	vendorLen  uint32
	vendorLenRead bool
	vendor     byteAccum
	nTagsRead  bool
	tagsRead   uint32

	tagLen     uint32
	tagLenRead bool
	tag        byteAccum
}

// VendorLengthField returns the byte length of the vendor string.
func (vc *VorbisComment) VendorLengthField(r *bits.Reader) (uint32, Status, error) {
	if vc.vendorLenRead {
		return vc.vendorLen, StatusOK, nil
	}
	v, ok := readLE32(r)
	if !ok {
		return 0, StatusContinue, nil
	}
	vc.vendorLen = v
	vc.vendorLenRead = true
	return v, StatusOK, nil
}

// VendorStringField returns the vendor string.
func (vc *VorbisComment) VendorStringField(r *bits.Reader) (string, Status, error) {
	if _, st, err := vc.VendorLengthField(r); st != StatusOK {
		return "", st, err
	}
	if vc.vendor.buf == nil {
		vc.vendor.init(int(vc.vendorLen))
	}
	st, err := vc.vendor.step(r)
	if st != StatusOK {
		return "", st, err
	}
	vc.Vendor = string(vc.vendor.buf)
	return vc.Vendor, StatusOK, nil
}

// TotalField returns the declared number of comment tags.
func (vc *VorbisComment) TotalField(r *bits.Reader) (uint32, Status, error) {
	if vc.nTagsRead {
		return vc.NTags, StatusOK, nil
	}
	if _, st, err := vc.VendorStringField(r); st != StatusOK {
		return 0, st, err
	}
	v, ok := readLE32(r)
	if !ok {
		return 0, StatusContinue, nil
	}
	vc.NTags = v
	vc.nTagsRead = true
	return v, StatusOK, nil
}

// NextTag decodes and returns the next "NAME=value" tag, split on the first
// '=', or StatusEnd once NTags tags have been returned.
func (vc *VorbisComment) NextTag(r *bits.Reader) (name, value string, status Status, err error) {
	if _, st, err := vc.TotalField(r); st != StatusOK {
		return "", "", st, err
	}
	if vc.tagsRead >= vc.NTags {
		return "", "", StatusEnd, nil
	}
	if !vc.tagLenRead {
		v, ok := readLE32(r)
		if !ok {
			return "", "", StatusContinue, nil
		}
		vc.tagLen = v
		vc.tagLenRead = true
	}
	if vc.tag.buf == nil {
		vc.tag.init(int(vc.tagLen))
	}
	st, derr := vc.tag.step(r)
	if st != StatusOK {
		return "", "", st, derr
	}
	raw := string(vc.tag.buf)
	pos := strings.IndexByte(raw, '=')
	if pos == -1 {
		return "", "", StatusError, fmt.Errorf("meta: vorbis comment tag %q has no '='", raw)
	}
	vc.tagsRead++
	vc.tagLenRead = false
	vc.tag = byteAccum{}
	return raw[:pos], raw[pos+1:], StatusOK, nil
}
