// Package matmod implements matrix algebra over Z_m for the Hill cipher.
// All arithmetic keeps results in the canonical residue range [0, m) so
// negative intermediates from cofactor expansion never leak out.
package matmod

import (
	hillcrypt "github.com/hillcrypt/hillcrypt-go"
)

// Modulus is the pixel-value modulus every cipher operation runs under.
const Modulus = 256

// Mod returns x mod m, ensuring the result is always non-negative in [0, m).
func Mod(x int64, m int) int {
	r := x % int64(m)
	if r < 0 {
		r += int64(m)
	}
	return int(r)
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		a = -a
	}
	return a
}

// ModInverse computes the modular multiplicative inverse a^(-1) mod m.
// It uses the extended Euclidean algorithm and fails with ErrNotInvertible
// when gcd(a, m) != 1.
func ModInverse(a, m int) (int, error) {
	oldR, r := Mod(int64(a), m), m
	oldS, s := 1, 0

	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, hillcrypt.ErrNotInvertible
	}
	return Mod(int64(oldS), m), nil
}

// Determinant computes the determinant of a square matrix by cofactor
// expansion along the first row. int64 intermediates are exact for the
// supported sizes: a 4x4 matrix with entries below 256 stays under 1e11.
func Determinant(m hillcrypt.Matrix) int64 {
	switch len(m) {
	case 1:
		return int64(m[0][0])
	case 2:
		return int64(m[0][0])*int64(m[1][1]) - int64(m[0][1])*int64(m[1][0])
	}

	var det int64
	sign := int64(1)
	for j := range m[0] {
		det += sign * int64(m[0][j]) * Determinant(minor(m, 0, j))
		sign = -sign
	}
	return det
}

// minor returns the matrix with row i and column j removed.
func minor(m hillcrypt.Matrix, i, j int) hillcrypt.Matrix {
	n := len(m)
	out := make(hillcrypt.Matrix, 0, n-1)
	for r := 0; r < n; r++ {
		if r == i {
			continue
		}
		row := make([]int, 0, n-1)
		for c := 0; c < n; c++ {
			if c == j {
				continue
			}
			row = append(row, m[r][c])
		}
		out = append(out, row)
	}
	return out
}

// IsInvertible reports whether m is invertible modulo the given modulus,
// i.e. whether its determinant is coprime with the modulus. This is the
// single validity gate for all keys.
func IsInvertible(m hillcrypt.Matrix, modulus int) bool {
	return GCD(Mod(Determinant(m), modulus), modulus) == 1
}

// Invert computes the inverse of m modulo the given modulus. It builds the
// adjugate (the transposed matrix of cofactors) and scales every entry by
// the modular inverse of the determinant. Fails with ErrNotInvertible when
// the determinant is not coprime with the modulus.
func Invert(m hillcrypt.Matrix, modulus int) (hillcrypt.Matrix, error) {
	detInv, err := ModInverse(Mod(Determinant(m), modulus), modulus)
	if err != nil {
		return nil, err
	}

	n := len(m)
	inv := make(hillcrypt.Matrix, n)
	for i := range inv {
		inv[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cof := Determinant(minor(m, i, j))
			if (i+j)%2 == 1 {
				cof = -cof
			}
			// Transpose: cofactor (i, j) lands at (j, i).
			inv[j][i] = Mod(cof*int64(detInv), modulus)
		}
	}
	return inv, nil
}

// Mul multiplies two n x n matrices modulo the given modulus.
func Mul(a, b hillcrypt.Matrix, modulus int) hillcrypt.Matrix {
	n := len(a)
	out := make(hillcrypt.Matrix, n)
	for i := 0; i < n; i++ {
		out[i] = make([]int, n)
		for j := 0; j < n; j++ {
			var acc int64
			for k := 0; k < n; k++ {
				acc += int64(a[i][k]) * int64(b[k][j])
			}
			out[i][j] = Mod(acc, modulus)
		}
	}
	return out
}

// Identity returns the n x n identity matrix.
func Identity(n int) hillcrypt.Matrix {
	m := make(hillcrypt.Matrix, n)
	for i := range m {
		m[i] = make([]int, n)
		m[i][i] = 1
	}
	return m
}

// MulVec writes (m * in) mod modulus into out, transforming one block.
// in and out must both have length len(m); the modulus must fit a byte.
func MulVec(m hillcrypt.Matrix, in, out []byte, modulus int) {
	n := len(m)
	for i := 0; i < n; i++ {
		var acc int64
		row := m[i]
		for j := 0; j < n; j++ {
			acc += int64(row[j]) * int64(in[j])
		}
		out[i] = byte(Mod(acc, modulus))
	}
}
