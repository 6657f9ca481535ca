package watermark

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Reed-Solomon configuration
const (
	eccDataShards   = 4
	maxParityShards = 8
)

// eccEncodedLen is the number of bytes eccEncode produces for a text of textLen bytes.
func eccEncodedLen(textLen, parityShards int) int {
	return (eccDataShards + parityShards) * (eccShardLen(textLen) + checksumBytes)
}

func eccShardLen(textLen int) int {
	return (4 + textLen + eccDataShards - 1) / eccDataShards
}

// eccEncode prepends the text length, splits the result into data shards, adds parity
// shards and follows every shard with its own tag so damaged shards can be told apart.
func eccEncode(text []byte, parityShards int, key []byte) ([]byte, error) {
	enc, err := reedsolomon.New(eccDataShards, parityShards)
	if err != nil {
		return nil, err
	}

	perShard := eccShardLen(len(text))
	padded := make([]byte, perShard*eccDataShards)
	binary.BigEndian.PutUint32(padded[:4], uint32(len(text)))
	copy(padded[4:], text)

	shards := make([][]byte, eccDataShards+parityShards)
	for i := range shards {
		if i < eccDataShards {
			shards[i] = padded[i*perShard : (i+1)*perShard]
		} else {
			shards[i] = make([]byte, perShard)
		}
	}
	if err := enc.Encode(shards); err != nil {
		return nil, err
	}

	return joinShards(shards, key)
}

// eccRepair drops every shard whose tag fails, rebuilds them from the rest and
// returns the re-serialized shards.
func eccRepair(data []byte, parityShards int, key []byte) ([]byte, error) {
	enc, err := reedsolomon.New(eccDataShards, parityShards)
	if err != nil {
		return nil, err
	}

	shards, err := splitShards(data, parityShards)
	if err != nil {
		return nil, err
	}

	missing := 0
	for i, s := range shards {
		ok, err := checksumMatches(key, s.data, s.tag)
		if err != nil {
			return nil, err
		}
		if !ok {
			shards[i].data = nil
			missing++
		}
	}
	if missing > parityShards {
		return nil, fmt.Errorf("%d damaged shards, at most %d can be rebuilt", missing, parityShards)
	}

	raw := make([][]byte, len(shards))
	for i, s := range shards {
		raw[i] = s.data
	}
	if err := enc.Reconstruct(raw); err != nil {
		return nil, err
	}
	if ok, err := enc.Verify(raw); err != nil || !ok {
		return nil, errors.New("rebuilt shards do not verify")
	}

	return joinShards(raw, key)
}

// eccPayload reads the text back out of the data shards.
func eccPayload(data []byte, parityShards int) ([]byte, error) {
	shards, err := splitShards(data, parityShards)
	if err != nil {
		return nil, err
	}

	var joined []byte
	for i := 0; i < eccDataShards; i++ {
		joined = append(joined, shards[i].data...)
	}

	length := binary.BigEndian.Uint32(joined[:4])
	if uint64(length) > uint64(len(joined)-4) {
		return nil, fmt.Errorf("%w: shards declare %d text bytes but hold %d", ErrCorruptFrame, length, len(joined)-4)
	}
	return joined[4 : 4+length], nil
}

type taggedShard struct {
	data []byte
	tag  []byte
}

func splitShards(data []byte, parityShards int) ([]taggedShard, error) {
	total := eccDataShards + parityShards
	if len(data)%total != 0 {
		return nil, fmt.Errorf("%w: %d data bytes do not split into %d shards", ErrCorruptFrame, len(data), total)
	}
	size := len(data) / total
	// every data shard holds at least one byte and the four length bytes are spread over them
	if size-checksumBytes < 1 || (size-checksumBytes)*eccDataShards < 4 {
		return nil, fmt.Errorf("%w: shards of %d bytes are too short", ErrCorruptFrame, size)
	}

	shards := make([]taggedShard, total)
	for i := range shards {
		chunk := data[i*size : (i+1)*size]
		shards[i] = taggedShard{
			data: append([]byte(nil), chunk[:size-checksumBytes]...),
			tag:  chunk[size-checksumBytes:],
		}
	}
	return shards, nil
}

func joinShards(shards [][]byte, key []byte) ([]byte, error) {
	var out []byte
	for _, s := range shards {
		tag, err := checksum(key, s)
		if err != nil {
			return nil, err
		}
		out = append(out, s...)
		out = append(out, tag...)
	}
	return out, nil
}
