package meta

import "github.com/mewkiz/miniflac/internal/bits"

// Block ties a metadata block header to its typed body. Exactly one of the
// body pointer fields is non-nil once DecodeHeader completes, selected by
// Header.Type.
type Block struct {
	Header Header

	StreamInfo    *StreamInfo
	Application   *Application
	SeekTable     *SeekTable
	VorbisComment *VorbisComment
	CueSheet      *CueSheet
	Picture       *Picture
	Padding       *Padding
	Opaque        *Opaque
}

// Reset clears the block so it can be reused for the next one in the
// stream.
func (b *Block) Reset() {
	*b = Block{}
}

// DecodeHeader parses the block header and allocates the typed body that
// Header.Type selects. It must be called (possibly several times, across
// StatusContinue) before any body field accessor.
func (b *Block) DecodeHeader(r *bits.Reader) (Status, error) {
	st, err := b.Header.Decode(r)
	if st != StatusOK {
		return st, err
	}
	if b.StreamInfo == nil && b.Application == nil && b.SeekTable == nil &&
		b.VorbisComment == nil && b.CueSheet == nil && b.Picture == nil &&
		b.Padding == nil && b.Opaque == nil {
		n := int(b.Header.Length)
		switch b.Header.Type {
		case TypeStreamInfo:
			b.StreamInfo = new(StreamInfo)
		case TypePadding:
			b.Padding = new(Padding)
			b.Padding.init(n)
		case TypeApplication:
			b.Application = new(Application)
			b.Application.init(n)
		case TypeSeekTable:
			b.SeekTable = new(SeekTable)
			b.SeekTable.init(n)
		case TypeVorbisComment:
			b.VorbisComment = new(VorbisComment)
		case TypeCueSheet:
			b.CueSheet = new(CueSheet)
		case TypePicture:
			b.Picture = new(Picture)
		default:
			b.Opaque = new(Opaque)
			b.Opaque.init(n)
		}
	}
	return StatusOK, nil
}

// DecodeBody drives whichever typed body DecodeHeader selected to full
// completion, regardless of which (if any) field accessors the caller has
// called. It exists so the top-level decoder can guarantee the invariant
// that finishing a block always consumes exactly Header.Length bytes, even
// when the caller never queries a block's fields at all.
func (b *Block) DecodeBody(r *bits.Reader) (Status, error) {
	switch {
	case b.StreamInfo != nil:
		for {
			_, st, err := b.StreamInfo.MD5Next(r)
			if st == StatusEnd {
				return StatusOK, nil
			}
			if st != StatusOK {
				return st, err
			}
		}
	case b.Application != nil:
		return b.Application.DataField(r)
	case b.SeekTable != nil:
		for {
			_, st, err := b.SeekTable.NextPoint(r)
			if st == StatusEnd {
				return StatusOK, nil
			}
			if st != StatusOK {
				return st, err
			}
		}
	case b.VorbisComment != nil:
		for {
			_, _, st, err := b.VorbisComment.NextTag(r)
			if st == StatusEnd {
				return StatusOK, nil
			}
			if st != StatusOK {
				return st, err
			}
		}
	case b.CueSheet != nil:
		for {
			_, st, err := b.CueSheet.NextTrack(r)
			if st == StatusEnd {
				return StatusOK, nil
			}
			if st != StatusOK {
				return st, err
			}
			for {
				_, st, err := b.CueSheet.NextIndex(r)
				if st == StatusEnd {
					break
				}
				if st != StatusOK {
					return st, err
				}
			}
		}
	case b.Picture != nil:
		for {
			_, st, err := b.Picture.DataNext(r)
			if st == StatusEnd {
				return StatusOK, nil
			}
			if st != StatusOK {
				return st, err
			}
		}
	case b.Padding != nil:
		return b.Padding.Skip(r)
	default:
		return b.Opaque.Skip(r)
	}
}
