package watermark

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	headerBits   = 32
	checksumBits = checksumBytes * 8

	// FrameOverhead is the number of bits every frame spends on its length header and checksum.
	FrameOverhead = headerBits + checksumBits
)

// Framer turns text into a self-describing bit sequence and back.
//
// A frame is a 32-bit big-endian count N of data bits, the N data bits, and a 32-bit
// BLAKE2b checksum of the data bytes. The data bytes are the UTF-8 text, or, when
// ParityShards is positive, the Reed-Solomon shards built from it.
type Framer struct {
	Key          []byte
	ParityShards int
}

// FrameLen returns the frame size in bits for a text of textBytes bytes.
func (f *Framer) FrameLen(textBytes int) int {
	return FrameOverhead + 8*f.dataBytes(textBytes)
}

func (f *Framer) dataBytes(textBytes int) int {
	if f.ParityShards > 0 {
		return eccEncodedLen(textBytes, f.ParityShards)
	}
	return textBytes
}

// MaxTextBytes returns the longest text, in bytes, whose frame fits capacity bits,
// or -1 when not even an empty text fits.
func (f *Framer) MaxTextBytes(capacity int) int {
	if capacity < FrameOverhead {
		return -1
	}
	n := (capacity - FrameOverhead) / 8
	for n >= 0 && f.FrameLen(n) > capacity {
		n--
	}
	return n
}

// Encode frames text. It fails with ErrPayloadTooLarge when the frame exceeds capacity bits.
func (f *Framer) Encode(text string, capacity int) ([]bool, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidEncoding)
	}
	need := f.FrameLen(len(text))
	if need > capacity || 8*uint64(f.dataBytes(len(text))) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: frame needs %d bits, capacity is %d", ErrPayloadTooLarge, need, capacity)
	}

	data := []byte(text)
	if f.ParityShards > 0 {
		var err error
		if data, err = eccEncode(data, f.ParityShards, f.Key); err != nil {
			return nil, err
		}
	}
	sum, err := checksum(f.Key, data)
	if err != nil {
		return nil, err
	}

	bits := make([]bool, 0, need)
	bits = appendUint32(bits, uint32(len(data)*8))
	bits = appendBytes(bits, data)
	bits = appendBytes(bits, sum)
	return bits, nil
}

// ReadHeader returns the declared number of data bits without checking anything else.
func (f *Framer) ReadHeader(bits []bool) (uint32, error) {
	if len(bits) < headerBits {
		return 0, fmt.Errorf("%w: %d bits cannot hold a length header", ErrCorruptFrame, len(bits))
	}
	return bitsToUint32(bits), nil
}

// Decode recovers the text from a frame. Bits after the frame are ignored.
func (f *Framer) Decode(bits []bool) (string, error) {
	n, err := f.ReadHeader(bits)
	if err != nil {
		return "", err
	}
	if len(bits) < FrameOverhead || uint64(n) > uint64(len(bits)-FrameOverhead) {
		return "", fmt.Errorf("%w: header declares %d data bits, only %d bits available", ErrCorruptFrame, n, len(bits))
	}
	if n%8 != 0 {
		return "", fmt.Errorf("%w: %d data bits is not a whole number of bytes", ErrCorruptFrame, n)
	}

	end := headerBits + int(n)
	data := bitsToBytes(bits[headerBits:end])
	sum := bitsToBytes(bits[end : end+checksumBits])

	ok, err := checksumMatches(f.Key, data, sum)
	if err != nil {
		return "", err
	}
	if !ok {
		if f.ParityShards == 0 {
			return "", ErrChecksumMismatch
		}
		repaired, err := eccRepair(data, f.ParityShards, f.Key)
		if err != nil {
			return "", fmt.Errorf("%w: shard repair failed: %v", ErrChecksumMismatch, err)
		}
		if ok, err = checksumMatches(f.Key, repaired, sum); err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: repaired shards do not match the frame checksum", ErrChecksumMismatch)
		}
		data = repaired
	}

	if f.ParityShards > 0 {
		if data, err = eccPayload(data, f.ParityShards); err != nil {
			return "", err
		}
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}
