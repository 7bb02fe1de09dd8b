// Package utils provides utility functions for hillcrypt.
// This file contains safe arithmetic and bounds helpers to prevent
// integer overflow and oversized allocations from hostile inputs
// (hand-edited key files, metadata sidecars, image headers).

package utils

import (
	"errors"
	"math"
)

// Maximum allowed sizes for decoded inputs.
const (
	// MaxImagePixels is the maximum allowed width*height of one channel.
	MaxImagePixels = 1 << 28 // 256M pixels

	// MaxChannels is the maximum number of channels in an image buffer.
	MaxChannels = 4
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// SafeMultiply multiplies two non-negative integers and returns an error if overflow occurs.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	// Check for overflow before multiplying
	if a > math.MaxInt/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// SafeMultiply3 multiplies three non-negative integers and returns an error if overflow occurs.
func SafeMultiply3(a, b, c int) (int, error) {
	ab, err := SafeMultiply(a, b)
	if err != nil {
		return 0, err
	}
	return SafeMultiply(ab, c)
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// CheckPositive validates that value is > 0.
func CheckPositive(value int, name string) error {
	if value <= 0 {
		return errors.New(name + " must be positive")
	}
	return nil
}
