package bits

// Reader is a resumable, MSB-first bit extractor built around a persistent
// 64-bit accumulator. The input byte slice is borrowed for the duration of a
// single Rebind..Fill* sequence; the accumulator and CRC registers persist
// across Rebind calls, which is what lets a caller feed arbitrary-sized
// slices one at a time and have decoding continue exactly where it left off.
//
// Invariants: live (Len) is always in [0, 64]; the accumulator's bits above
// position Len-1 are zero; the CRC-16 register reflects every whole byte
// that Fill or FillCRC16Only has brought into the accumulator since the last
// ResetCRC, and the CRC-8 register every such byte brought in by Fill,
// regardless of how many of its bits have since been consumed by
// Read/Discard. Bytes brought in by FillNoCRC update neither register.
type Reader struct {
	data []byte
	pos  int

	acc  uint64
	live uint

	crc8   uint8
	crc16  uint16
	nbytes uint64
}

// Rebind binds a new input slice to the reader, to be consumed from its
// start. The accumulator, CRC registers, and byte counter are left
// untouched: only the cursor over fresh input is reset.
func (r *Reader) Rebind(data []byte) {
	r.data = data
	r.pos = 0
}

// Consumed returns the number of bytes pulled from the currently bound slice.
func (r *Reader) Consumed() int {
	return r.pos
}

// Len reports the number of live bits currently held in the accumulator.
func (r *Reader) Len() uint {
	return r.live
}

// ByteCount returns the number of whole bytes that have entered the
// accumulator through Fill or FillCRC16Only since the last ResetCRC; bytes
// brought in by FillNoCRC are not counted.
func (r *Reader) ByteCount() uint64 {
	return r.nbytes
}

// CRC8 returns the current CRC-8 register value.
func (r *Reader) CRC8() uint8 {
	return r.crc8
}

// CRC16 returns the current CRC-16 register value.
func (r *Reader) CRC16() uint16 {
	return r.crc16
}

func maskOf(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// fillByte pulls one more byte from the bound slice into the low end of the
// accumulator, shifting older bits up. It reports false without consuming
// twice if the slice is exhausted.
func (r *Reader) fillByte(crc8, crc16 bool) bool {
	if r.pos >= len(r.data) {
		return false
	}
	b := r.data[r.pos]
	r.pos++
	r.acc = ((r.acc << 8) | uint64(b)) & maskOf(r.live + 8)
	r.live += 8
	if crc8 {
		r.crc8 = updateCRC8(r.crc8, b)
	}
	if crc16 {
		r.crc16 = updateCRC16(r.crc16, b)
	}
	if crc8 || crc16 {
		r.nbytes++
	}
	return true
}

func (r *Reader) fill(n uint, crc8, crc16 bool) bool {
	for r.live < n {
		if !r.fillByte(crc8, crc16) {
			return false
		}
	}
	return true
}

// Fill ensures at least n (1 <= n <= 64) live bits, pulling and CRC-tracking
// bytes as needed. It reports false ("need more input") without having
// consumed any byte twice; the caller should retry with a longer slice.
func (r *Reader) Fill(n uint) bool {
	return r.fill(n, true, true)
}

// FillNoCRC behaves like Fill but does not feed pulled bytes into the CRC-8
// or CRC-16 registers. Used for metadata payloads and Ogg transport bytes,
// neither of which are covered by the FLAC frame CRCs.
func (r *Reader) FillNoCRC(n uint) bool {
	return r.fill(n, false, false)
}

// FillCRC16Only behaves like Fill but feeds pulled bytes only into the
// CRC-16 register, not CRC-8. The frame header's own trailing CRC-8 byte is
// the sole user of this: the footer's CRC-16 covers "the entire frame
// excluding the footer", which includes that CRC-8 byte, while CRC-8
// naturally must exclude the byte holding its own value.
func (r *Reader) FillCRC16Only(n uint) bool {
	return r.fill(n, false, true)
}

// Peek returns the next n live bits without consuming them. The caller must
// have already established n live bits via Fill/FillNoCRC.
func (r *Reader) Peek(n uint) uint64 {
	return (r.acc >> (r.live - n)) & maskOf(n)
}

// Discard consumes n live bits without returning them.
func (r *Reader) Discard(n uint) {
	r.live -= n
	r.acc &= maskOf(r.live)
}

// Read consumes and returns the next n live bits, MSB-first, right-aligned.
func (r *Reader) Read(n uint) uint64 {
	v := r.Peek(n)
	r.Discard(n)
	return v
}

// ReadSigned consumes the next n live bits and sign-extends them as a two's
// complement integer.
func (r *Reader) ReadSigned(n uint) int64 {
	return SignExtend(r.Read(n), n)
}

// Align discards the live fractional byte, if any, leaving Len() a multiple
// of 8. Per the bit reader contract the discarded bits are expected to be
// zero padding; callers that must validate that should Peek before Align.
func (r *Reader) Align() {
	if frac := r.live % 8; frac != 0 {
		r.Discard(frac)
	}
}

// ResetCRC zeros both CRC registers and the byte counter. Any whole bytes
// still live in the accumulator (i.e. already pulled ahead of the fields
// that have been Read so far) are folded into the fresh CRC registers first,
// so that "CRC covers everything from here on" holds even when Fill looked
// further ahead than the caller has consumed.
//
// ResetCRC must be called at a byte boundary (call Align first if unsure);
// every call site in this decoder satisfies that by construction, since FLAC
// CRC regions always begin and end on byte boundaries.
func (r *Reader) ResetCRC() {
	if r.live%8 != 0 {
		panic("bits: ResetCRC called without byte alignment")
	}
	var pending [8]byte
	n := int(r.live / 8)
	live := r.live
	for i := 0; i < n; i++ {
		live -= 8
		pending[i] = byte(r.acc >> live)
	}
	r.crc8 = 0
	r.crc16 = 0
	r.nbytes = 0
	for i := 0; i < n; i++ {
		r.crc8 = updateCRC8(r.crc8, pending[i])
		r.crc16 = updateCRC16(r.crc16, pending[i])
		r.nbytes++
	}
}
