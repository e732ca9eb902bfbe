package meta

import "github.com/mewkiz/miniflac/internal/bits"

// Application contains third party application specific data.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_application
type Application struct {
	// Registered application ID.
	//
	// ref: https://www.xiph.org/flac/id.html
	ID uint32
	// Application data.
	Data []byte

	idRead bool
	data   byteAccum
	bodyLen int
}

// init must be called once, with the owning block header's body length, so
// the trailing data field knows how many bytes to accumulate.
func (a *Application) init(bodyLen int) {
	a.bodyLen = bodyLen
}

// IDField returns the registered application ID.
func (a *Application) IDField(r *bits.Reader) (uint32, Status, error) {
	if a.idRead {
		return a.ID, StatusOK, nil
	}
	if !r.FillNoCRC(32) {
		return 0, StatusContinue, nil
	}
	a.ID = uint32(r.Read(32))
	a.idRead = true
	return a.ID, StatusOK, nil
}

// DataField returns the application-defined payload that follows the ID.
func (a *Application) DataField(r *bits.Reader) (Status, error) {
	if !a.idRead {
		_, st, err := a.IDField(r)
		if st != StatusOK {
			return st, err
		}
	}
	if a.data.buf == nil {
		a.data.init(a.bodyLen - 4)
	}
	st, err := a.data.step(r)
	if st == StatusOK {
		a.Data = a.data.buf
	}
	return st, err
}
