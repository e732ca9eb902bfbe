package frame

import (
	"fmt"

	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/miniflac/internal/bits"
)

// PredMethod identifies how a subframe's samples are coded.
type PredMethod uint8

const (
	PredConstant PredMethod = iota
	PredVerbatim
	PredFixed
	PredLPC
)

// fixedCoeffs holds the FLAC fixed-predictor coefficients for orders 1-4,
// applied as: pred = sum(fixedCoeffs[order-1][j] * history[j]).
var fixedCoeffs = [4][]int64{
	{1},
	{2, -1},
	{3, -3, 1},
	{4, -6, 4, -1},
}

// SubHeader is the one-byte subframe header plus its optional unary-coded
// wasted-bits count.
type SubHeader struct {
	Method PredMethod
	Order  uint8 // FIXED: 0-4; LPC: 1-32
	Wasted uint8 // bits to shift back in once the subframe is reconstructed

	step     int
	hasWaste bool
	unary    bits.Unary
}

func (h *SubHeader) Reset() {
	*h = SubHeader{}
}

func (h *SubHeader) Decode(r *bits.Reader) (Status, error) {
	if h.step == 0 {
		if !r.Fill(8) {
			return StatusContinue, nil
		}
		if r.Read(1) != 0 {
			return StatusError, fmt.Errorf("frame: subframe header padding bit must be 0")
		}
		typ := uint8(r.Read(6))
		h.hasWaste = r.Read(1) != 0
		switch {
		case typ == 0x00:
			h.Method = PredConstant
		case typ == 0x01:
			h.Method = PredVerbatim
		case typ&0x38 == 0x08: // 001xxx
			order := typ & 0x07
			if order > 4 {
				return StatusError, fmt.Errorf("frame: reserved fixed predictor order %d", order)
			}
			h.Method = PredFixed
			h.Order = order
		case typ&0x20 == 0x20: // 1xxxxx
			h.Method = PredLPC
			h.Order = (typ & 0x1F) + 1
		default:
			return StatusError, fmt.Errorf("frame: reserved subframe type bit pattern %06b", typ)
		}
		h.step = 1
	}
	if h.hasWaste {
		n, st := h.unary.Step(r)
		if st != StatusOK {
			return st, nil
		}
		h.Wasted = uint8(n) + 1
		dbg.Println("wasted bits-per-sample:", h.Wasted)
	} else {
		h.Wasted = 0
	}
	return StatusOK, nil
}

// SubFrame decodes one channel's worth of samples for a frame.
type SubFrame struct {
	Header  SubHeader
	Samples []int32

	effBps uint8
	step   int

	// CONSTANT
	constDone bool

	// VERBATIM / warm-up sample fill, shared index
	sampleIdx int

	// LPC
	lpcPrecision uint8
	lpcShift     int8
	lpcHeadStep  int
	coeffs       []int64
	coeffIdx     int

	residual  residualDecoder
	residBuf  []int32
	shiftDone bool
}

func (s *SubFrame) Reset() {
	*s = SubFrame{}
}

// Decode parses one subframe of blockSize samples at the given bits-per-
// sample (already adjusted by the caller for any mid/side +1 bit).
func (s *SubFrame) Decode(r *bits.Reader, blockSize int, bps uint8) (Status, error) {
	for s.step < 5 {
		switch s.step {
		case 0:
			st, err := s.Header.Decode(r)
			if st != StatusOK {
				return st, err
			}
			s.effBps = bps - s.Header.Wasted
			if s.Samples == nil {
				s.Samples = make([]int32, blockSize)
			}
		case 1:
			st, err := s.decodeBody(r, blockSize)
			if st != StatusOK {
				return st, err
			}
		case 2:
			st, err := s.decodeResidualAndReconstruct(r, blockSize)
			if st != StatusOK {
				return st, err
			}
		case 3:
			if s.Header.Wasted > 0 && !s.shiftDone {
				for i := range s.Samples {
					s.Samples[i] <<= s.Header.Wasted
				}
			}
			s.shiftDone = true
		}
		s.step++
	}
	return StatusOK, nil
}

// decodeBody handles CONSTANT/VERBATIM fully, and the warm-up portion of
// FIXED/LPC; residual decoding and reconstruction for FIXED/LPC happens in
// decodeResidualAndReconstruct.
func (s *SubFrame) decodeBody(r *bits.Reader, blockSize int) (Status, error) {
	switch s.Header.Method {
	case PredConstant:
		if s.constDone {
			return StatusOK, nil
		}
		if !r.Fill(uint(s.effBps)) {
			return StatusContinue, nil
		}
		v := int32(r.ReadSigned(uint(s.effBps)))
		for i := range s.Samples {
			s.Samples[i] = v
		}
		s.constDone = true
		return StatusOK, nil

	case PredVerbatim:
		for s.sampleIdx < blockSize {
			if !r.Fill(uint(s.effBps)) {
				return StatusContinue, nil
			}
			s.Samples[s.sampleIdx] = int32(r.ReadSigned(uint(s.effBps)))
			s.sampleIdx++
		}
		return StatusOK, nil

	case PredFixed:
		for s.sampleIdx < int(s.Header.Order) {
			if !r.Fill(uint(s.effBps)) {
				return StatusContinue, nil
			}
			s.Samples[s.sampleIdx] = int32(r.ReadSigned(uint(s.effBps)))
			s.sampleIdx++
		}
		return StatusOK, nil

	case PredLPC:
		for s.sampleIdx < int(s.Header.Order) {
			if !r.Fill(uint(s.effBps)) {
				return StatusContinue, nil
			}
			s.Samples[s.sampleIdx] = int32(r.ReadSigned(uint(s.effBps)))
			s.sampleIdx++
		}
		for s.lpcHeadStep < 2 {
			switch s.lpcHeadStep {
			case 0:
				if !r.Fill(4) {
					return StatusContinue, nil
				}
				prec := uint8(r.Read(4))
				if prec == 0xF {
					return StatusError, fmt.Errorf("frame: invalid LPC precision marker")
				}
				s.lpcPrecision = prec + 1
			case 1:
				if !r.Fill(5) {
					return StatusContinue, nil
				}
				s.lpcShift = int8(r.ReadSigned(5))
				if s.lpcShift < 0 {
					s.lpcShift = 0
				}
				s.coeffs = make([]int64, s.Header.Order)
			}
			s.lpcHeadStep++
		}
		for s.coeffIdx < int(s.Header.Order) {
			if !r.Fill(uint(s.lpcPrecision)) {
				return StatusContinue, nil
			}
			s.coeffs[s.coeffIdx] = r.ReadSigned(uint(s.lpcPrecision))
			s.coeffIdx++
		}
		return StatusOK, nil
	}
	return StatusOK, nil
}

func (s *SubFrame) decodeResidualAndReconstruct(r *bits.Reader, blockSize int) (Status, error) {
	if s.Header.Method != PredFixed && s.Header.Method != PredLPC {
		return StatusOK, nil
	}
	order := int(s.Header.Order)
	if s.residBuf == nil {
		s.residBuf = make([]int32, blockSize-order)
	}
	st, err := s.residual.decode(r, blockSize, order, s.residBuf)
	if st != StatusOK {
		return st, err
	}

	switch s.Header.Method {
	case PredFixed:
		var coeffs []int64
		if order > 0 {
			coeffs = fixedCoeffs[order-1]
		}
		for i := order; i < blockSize; i++ {
			var sum int64
			for j, c := range coeffs {
				sum += c * int64(s.Samples[i-1-j])
			}
			s.Samples[i] = int32(int64(s.residBuf[i-order]) + sum)
		}
	case PredLPC:
		for i := order; i < blockSize; i++ {
			var sum int64
			for j := 0; j < order; j++ {
				sum += s.coeffs[j] * int64(s.Samples[i-1-j])
			}
			s.Samples[i] = int32(int64(s.residBuf[i-order]) + (sum >> uint(s.lpcShift)))
		}
	}
	return StatusOK, nil
}

// residualDecoder decodes a partitioned-Rice coded residual: a 2-bit coding
// method selector, a 4-bit partition order, then per partition a Rice
// parameter (escaping to raw unencoded samples when all-ones) and that many
// Rice- or raw-coded values.
//
// Method 0 uses a 4-bit Rice parameter per partition; method 1 ("Rice2")
// uses 5 bits, letting it represent residuals with larger dynamic range.
//
// ref: https://www.xiph.org/flac/format.html#partitioned_rice
type residualDecoder struct {
	paramBits uint // 4 for method 0, 5 for method 1

	step         int // 0=method+partOrder, 1=partition header, 2=partition values
	partOrder    uint8
	partitions   int
	partitionIdx int
	partSize     int
	partPos      int
	param        uint8
	escape       bool
	escBits      uint8
	unary        bits.Unary
	haveQuotient bool
	quotient     uint64
	written      int
}

func (rd *residualDecoder) decode(r *bits.Reader, blockSize, predOrder int, out []int32) (Status, error) {
	for {
		switch rd.step {
		case 0:
			if !r.Fill(2 + 4) {
				return StatusContinue, nil
			}
			method := uint8(r.Read(2))
			switch method {
			case 0:
				rd.paramBits = 4
			case 1:
				rd.paramBits = 5
			default:
				return StatusError, fmt.Errorf("frame: reserved residual coding method %d", method)
			}
			rd.partOrder = uint8(r.Read(4))
			rd.partitions = 1 << rd.partOrder
			if blockSize%rd.partitions != 0 {
				return StatusError, fmt.Errorf("frame: partition count %d does not divide block size %d", rd.partitions, blockSize)
			}
			rd.partitionIdx = 0
			rd.written = 0
			rd.step = 1
		case 1:
			if rd.partitionIdx >= rd.partitions {
				return StatusOK, nil
			}
			if !r.Fill(rd.paramBits) {
				return StatusContinue, nil
			}
			rd.param = uint8(r.Peek(rd.paramBits))
			escapeValue := uint8((1 << rd.paramBits) - 1)
			if rd.param == escapeValue {
				if !r.Fill(rd.paramBits + 5) {
					return StatusContinue, nil
				}
				r.Discard(rd.paramBits)
				rd.escBits = uint8(r.Read(5))
				rd.escape = true
				dbg.Println("escaped partition, raw sample width:", rd.escBits)
			} else {
				r.Discard(rd.paramBits)
				rd.escape = false
				rd.unary.Reset()
			}
			size := blockSize >> rd.partOrder
			if rd.partitionIdx == 0 {
				size -= predOrder
			}
			rd.partSize = size
			rd.partPos = 0
			rd.step = 2
		case 2:
			for rd.partPos < rd.partSize {
				if rd.escape {
					if rd.escBits == 0 {
						out[rd.written] = 0
					} else {
						if !r.Fill(uint(rd.escBits)) {
							return StatusContinue, nil
						}
						out[rd.written] = int32(r.ReadSigned(uint(rd.escBits)))
					}
				} else {
					if !rd.haveQuotient {
						q, st := rd.unary.Step(r)
						if st != StatusOK {
							return st, nil
						}
						rd.quotient = q
						rd.haveQuotient = true
					}
					if !r.Fill(uint(rd.param)) {
						return StatusContinue, nil
					}
					low := r.Read(uint(rd.param))
					m := rd.quotient<<rd.param | low
					out[rd.written] = int32(bits.DecodeZigZag(m))
					rd.haveQuotient = false
				}
				rd.partPos++
				rd.written++
			}
			rd.partitionIdx++
			rd.step = 1
		}
	}
}
