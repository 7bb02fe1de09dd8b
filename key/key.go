// Package key manages Hill cipher key matrices: random generation,
// validation of manually entered matrices, and the persisted key bundle.
package key

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
	"github.com/hillcrypt/hillcrypt-go/matmod"
	"github.com/hillcrypt/hillcrypt-go/utils"
)

const (
	// MinSize and MaxSize bound the supported key matrix dimensions.
	MinSize = 2
	MaxSize = 4

	// maxGenerateAttempts bounds the rejection-sampling loop. Invertible
	// matrices mod 256 are dense (roughly half of all random matrices),
	// so hitting this cap with a healthy CSPRNG is effectively impossible;
	// the bound exists so a broken caller-supplied reader cannot hang us.
	maxGenerateAttempts = 10000
)

// Generate samples an invertible size x size key matrix from the CSPRNG.
// Candidates failing the invertibility gate are discarded and resampled.
// Fails with ErrKeyGenerationExhausted once the retry budget is spent.
func Generate(size int) (hillcrypt.Matrix, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: size %d not in [%d, %d]",
			hillcrypt.ErrKeyNotSquare, size, MinSize, MaxSize)
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		raw, err := utils.SecureRandomBytes(size * size)
		if err != nil {
			return nil, fmt.Errorf("sampling key bytes: %w", err)
		}
		m := make(hillcrypt.Matrix, size)
		for i := range m {
			row := make([]int, size)
			for j := range row {
				row[j] = int(raw[i*size+j])
			}
			m[i] = row
		}
		if matmod.IsInvertible(m, matmod.Modulus) {
			return m, nil
		}
	}
	return nil, hillcrypt.ErrKeyGenerationExhausted
}

// Validate checks a manually entered matrix: square shape within the
// supported sizes, entries in [0, 255], and invertibility mod 256. The
// failure reasons are distinguishable with errors.Is; all of them match
// ErrInvalidKey. On success it returns its own copy of the matrix.
func Validate(rows [][]int) (hillcrypt.Matrix, error) {
	n := len(rows)
	if n < MinSize || n > MaxSize {
		return nil, fmt.Errorf("%w: %d rows, supported sizes are %d..%d",
			hillcrypt.ErrKeyNotSquare, n, MinSize, MaxSize)
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d",
				hillcrypt.ErrKeyNotSquare, i, len(row), n)
		}
		for j, v := range row {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: entry (%d,%d) = %d",
					hillcrypt.ErrKeyEntryRange, i, j, v)
			}
		}
	}

	m := hillcrypt.Matrix(rows).Clone()
	if !matmod.IsInvertible(m, matmod.Modulus) {
		return nil, fmt.Errorf("%w: det mod 256 = %d",
			hillcrypt.ErrKeyNotInvertible, matmod.Mod(matmod.Determinant(m), matmod.Modulus))
	}
	return m, nil
}

// NewBundle wraps a validated matrix with its persisted metadata.
func NewBundle(m hillcrypt.Matrix, label string) *hillcrypt.KeyBundle {
	clone := m.Clone()
	return &hillcrypt.KeyBundle{
		ID:          uuid.NewString(),
		Label:       label,
		Size:        clone.Size(),
		Matrix:      clone,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Fingerprint: Fingerprint(clone),
	}
}

// Fingerprint returns the SHA3-256 digest of the matrix entries in
// row-major order, one byte per entry.
func Fingerprint(m hillcrypt.Matrix) []byte {
	buf := make([]byte, 0, len(m)*len(m))
	for _, row := range m {
		for _, v := range row {
			buf = append(buf, byte(v))
		}
	}
	return utils.SHA3256(buf)
}
