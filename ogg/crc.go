package ogg

// crcTable implements the CRC-32 variant the Ogg container format uses:
// polynomial 0x04C11DB7, initial value 0, no reflection, no XOR-out. This is unrelated to the FLAC frame
// CRC-8/CRC-16 in internal/bits; Ogg specifies its own.
var crcTable [256]uint32

func init() {
	for i := range crcTable {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		crcTable[i] = r
	}
}

func crcUpdate(crc uint32, b byte) uint32 {
	return (crc << 8) ^ crcTable[byte(crc>>24)^b]
}
