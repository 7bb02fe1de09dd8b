package utils

import (
	"crypto/rand"
	"io"
)

// RandReader is the randomness source for key generation. It defaults to
// crypto/rand and is a variable so tests can substitute a deterministic
// reader.
var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand, which relies on the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(RandReader, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
