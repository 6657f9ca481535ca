package watermark

// Bits are carried MSB first, one bool per bit.

func appendBytes(bits []bool, data []byte) []bool {
	for _, b := range data {
		for j := 7; j >= 0; j-- {
			bits = append(bits, (b>>j)&1 == 1)
		}
	}
	return bits
}

func appendUint32(bits []bool, v uint32) []bool {
	for j := 31; j >= 0; j-- {
		bits = append(bits, (v>>j)&1 == 1)
	}
	return bits
}

// bitsToBytes packs len(bits)/8 bytes; trailing bits that do not fill a byte are ignored.
func bitsToBytes(bits []bool) []byte {
	data := make([]byte, len(bits)/8)
	for i := range data {
		var b byte
		for j := 0; j < 8; j++ {
			if bits[i*8+j] {
				b |= 1 << (7 - j)
			}
		}
		data[i] = b
	}
	return data
}

func bitsToUint32(bits []bool) uint32 {
	var v uint32
	for _, bit := range bits[:32] {
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v
}
