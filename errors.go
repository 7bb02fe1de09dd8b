package hillcrypt

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every operation in the subpackages fails with exactly one
// of these kinds so callers can map them to messages and exit codes with
// errors.Is. The core performs no logging and no retries beyond the bounded
// key-generation loop.
var (
	// ErrInvalidKey is the family error for rejected key matrices. The
	// shape, range and invertibility variants below all match it.
	ErrInvalidKey = errors.New("invalid key")

	// ErrKeyNotSquare reports a matrix that is not square or whose
	// dimension is outside the supported 2..4 range.
	ErrKeyNotSquare = fmt.Errorf("%w: matrix is not square", ErrInvalidKey)

	// ErrKeyEntryRange reports a matrix entry outside [0, 255].
	ErrKeyEntryRange = fmt.Errorf("%w: entry outside [0, 255]", ErrInvalidKey)

	// ErrKeyNotInvertible reports a determinant sharing a factor with 256.
	ErrKeyNotInvertible = fmt.Errorf("%w: matrix is not invertible modulo 256", ErrInvalidKey)

	// ErrKeyGenerationExhausted reports that the bounded retry budget was
	// spent without sampling an invertible matrix.
	ErrKeyGenerationExhausted = errors.New("key generation attempts exhausted")

	// ErrKeyLoad reports an unreadable, corrupt or non-matching key record.
	ErrKeyLoad = errors.New("key record unreadable or corrupt")

	// ErrMissingMetadata reports a decryption attempted without its
	// metadata record, or with metadata referencing a different key size.
	ErrMissingMetadata = errors.New("encryption metadata missing or inconsistent")

	// ErrDimensionMismatch reports buffer lengths that do not match the
	// dimensions implied by the metadata.
	ErrDimensionMismatch = errors.New("buffer dimensions do not match metadata")

	// ErrShapeMismatch reports an analysis over buffers of unequal shape.
	ErrShapeMismatch = errors.New("buffers have different shapes")

	// ErrNotInvertible reports a value with no inverse under the modulus.
	// Past key validation this is unreachable; seeing it surface means a
	// caller bypassed the validity gate.
	ErrNotInvertible = errors.New("no modular inverse exists")
)
