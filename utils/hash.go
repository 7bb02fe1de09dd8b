package utils

import (
	"golang.org/x/crypto/sha3"
)

// SHA3256 computes the SHA3-256 digest of the input.
// It is used to fingerprint serialized key material so a corrupted or
// hand-edited key file is caught at load time.
func SHA3256(input []byte) []byte {
	sum := sha3.Sum256(input)
	return sum[:]
}
