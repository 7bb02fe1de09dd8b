// Package cipher implements the block transform of the Hill cipher over
// image buffers. Each channel is processed independently: flattened pixel
// bytes are zero-padded to a multiple of the key dimension, partitioned
// into blocks, and each block vector is multiplied by the key matrix
// (encryption) or its modular inverse (decryption) mod 256.
//
// Both operations are stateless and deterministic given (key, buffer).
// All key, metadata and shape checks run before any output is built, so a
// late failure can never leave a partially transformed result behind.
package cipher

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
	"github.com/hillcrypt/hillcrypt-go/matmod"
	"github.com/hillcrypt/hillcrypt-go/utils"
)

// Encrypt transforms every channel of img with the key matrix m and
// returns the ciphertext buffer together with the metadata required for
// exact reconstruction. The input buffer is not modified.
func Encrypt(m hillcrypt.Matrix, img *hillcrypt.ImageBuffer) (*hillcrypt.ImageBuffer, *hillcrypt.EncryptionMetadata, error) {
	if err := checkKey(m); err != nil {
		return nil, nil, err
	}
	pixels, err := checkPlainImage(img)
	if err != nil {
		return nil, nil, err
	}

	n := m.Size()
	pad := (n - pixels%n) % n

	meta := &hillcrypt.EncryptionMetadata{
		Width:        img.Width,
		Height:       img.Height,
		ChannelCount: len(img.Channels),
		KeySize:      n,
		PadLengths:   make([]int, len(img.Channels)),
	}
	out := &hillcrypt.ImageBuffer{
		Width:    img.Width,
		Height:   img.Height,
		Channels: make([][]byte, len(img.Channels)),
	}

	// Channels never mix, so they transform in parallel. Block order
	// within a channel is preserved because each goroutine walks its own
	// channel sequentially and writes to a disjoint output slice.
	var g errgroup.Group
	for ci := range img.Channels {
		ci := ci
		meta.PadLengths[ci] = pad
		g.Go(func() error {
			out.Channels[ci] = transform(m, img.Channels[ci], pad, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

// Decrypt is the exact inverse of Encrypt. The inverse matrix is computed
// once per call, not per block. Fails with ErrMissingMetadata when meta is
// nil or references a different key size, and with ErrDimensionMismatch
// when the channel lengths cannot be reconciled with the metadata.
func Decrypt(m hillcrypt.Matrix, img *hillcrypt.ImageBuffer, meta *hillcrypt.EncryptionMetadata) (*hillcrypt.ImageBuffer, error) {
	if err := checkKey(m); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image buffer", hillcrypt.ErrDimensionMismatch)
	}

	n := m.Size()
	pixels, err := checkMetadata(meta, n)
	if err != nil {
		return nil, err
	}
	if len(img.Channels) != meta.ChannelCount {
		return nil, fmt.Errorf("%w: buffer has %d channels, metadata says %d",
			hillcrypt.ErrDimensionMismatch, len(img.Channels), meta.ChannelCount)
	}
	for ci, ch := range img.Channels {
		want := pixels + meta.PadLengths[ci]
		if len(ch) != want {
			return nil, fmt.Errorf("%w: channel %d has %d bytes, metadata implies %d",
				hillcrypt.ErrDimensionMismatch, ci, len(ch), want)
		}
		if want%n != 0 {
			return nil, fmt.Errorf("%w: channel %d padded length %d is not a multiple of %d",
				hillcrypt.ErrDimensionMismatch, ci, want, n)
		}
	}

	inv, err := matmod.Invert(m, matmod.Modulus)
	if err != nil {
		// Unreachable past checkKey; a caller bypassed the gate.
		return nil, err
	}

	out := &hillcrypt.ImageBuffer{
		Width:    meta.Width,
		Height:   meta.Height,
		Channels: make([][]byte, len(img.Channels)),
	}
	var g errgroup.Group
	for ci := range img.Channels {
		ci := ci
		g.Go(func() error {
			plain := transform(inv, img.Channels[ci], 0, n)
			out.Channels[ci] = plain[:pixels]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// transform zero-pads src by pad bytes and applies the block transform.
func transform(m hillcrypt.Matrix, src []byte, pad, n int) []byte {
	padded := make([]byte, len(src)+pad)
	copy(padded, src)
	dst := make([]byte, len(padded))
	for off := 0; off < len(padded); off += n {
		matmod.MulVec(m, padded[off:off+n], dst[off:off+n], matmod.Modulus)
	}
	return dst
}

func checkKey(m hillcrypt.Matrix) error {
	n := m.Size()
	if n < 2 || n > 4 {
		return fmt.Errorf("%w: size %d", hillcrypt.ErrKeyNotSquare, n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries", hillcrypt.ErrKeyNotSquare, i, len(row))
		}
	}
	if !matmod.IsInvertible(m, matmod.Modulus) {
		return hillcrypt.ErrKeyNotInvertible
	}
	return nil
}

// checkPlainImage validates a plaintext buffer and returns width*height.
func checkPlainImage(img *hillcrypt.ImageBuffer) (int, error) {
	if img == nil {
		return 0, fmt.Errorf("%w: nil image buffer", hillcrypt.ErrDimensionMismatch)
	}
	if err := utils.CheckPositive(img.Width, "width"); err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	if err := utils.CheckPositive(img.Height, "height"); err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	pixels, err := utils.SafeMultiply(img.Width, img.Height)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	if err := utils.CheckLength(pixels, utils.MaxImagePixels); err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	switch len(img.Channels) {
	case 1, 3, 4:
	default:
		return 0, fmt.Errorf("%w: %d channels, want 1, 3 or 4",
			hillcrypt.ErrDimensionMismatch, len(img.Channels))
	}
	for ci, ch := range img.Channels {
		if len(ch) != pixels {
			return 0, fmt.Errorf("%w: channel %d has %d bytes, want %d",
				hillcrypt.ErrDimensionMismatch, ci, len(ch), pixels)
		}
	}
	return pixels, nil
}

// checkMetadata validates a metadata record against the supplied key size
// and returns width*height.
func checkMetadata(meta *hillcrypt.EncryptionMetadata, keySize int) (int, error) {
	if meta == nil {
		return 0, hillcrypt.ErrMissingMetadata
	}
	if meta.KeySize != keySize {
		return 0, fmt.Errorf("%w: metadata key size %d, supplied key size %d",
			hillcrypt.ErrMissingMetadata, meta.KeySize, keySize)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return 0, fmt.Errorf("%w: non-positive dimensions %dx%d",
			hillcrypt.ErrMissingMetadata, meta.Width, meta.Height)
	}
	switch meta.ChannelCount {
	case 1, 3, 4:
	default:
		return 0, fmt.Errorf("%w: %d channels", hillcrypt.ErrMissingMetadata, meta.ChannelCount)
	}
	if len(meta.PadLengths) != meta.ChannelCount {
		return 0, fmt.Errorf("%w: %d pad lengths for %d channels",
			hillcrypt.ErrMissingMetadata, len(meta.PadLengths), meta.ChannelCount)
	}
	for ci, pad := range meta.PadLengths {
		if pad < 0 || pad >= keySize {
			return 0, fmt.Errorf("%w: channel %d pad length %d outside [0, %d)",
				hillcrypt.ErrMissingMetadata, ci, pad, keySize)
		}
	}
	pixels, err := utils.SafeMultiply(meta.Width, meta.Height)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrMissingMetadata, err)
	}
	if err := utils.CheckLength(pixels, utils.MaxImagePixels); err != nil {
		return 0, fmt.Errorf("%w: %v", hillcrypt.ErrMissingMetadata, err)
	}
	return pixels, nil
}
