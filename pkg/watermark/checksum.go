package watermark

import (
	"crypto/hmac"

	"golang.org/x/crypto/blake2b"
)

// checksumBytes is the width of the frame checksum and of every shard tag.
const checksumBytes = 4

// maxKeyBytes is the longest key BLAKE2b accepts.
const maxKeyBytes = blake2b.Size

// checksum returns a truncated BLAKE2b digest of data, keyed when key is non-empty.
func checksum(key, data []byte) ([]byte, error) {
	h, err := blake2b.New(checksumBytes, key)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

func checksumMatches(key, data, sum []byte) (bool, error) {
	got, err := checksum(key, data)
	if err != nil {
		return false, err
	}
	return hmac.Equal(got, sum), nil
}
