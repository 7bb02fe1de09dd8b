// Package analysis computes the statistics used to judge encryption
// quality: Shannon entropy, Pearson correlation between two buffers, and
// per-channel histograms. All functions are pure; callers decide how to
// render the results.
package analysis

import (
	"fmt"
	"math"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
)

// Histogram returns the 256-bucket frequency count of each channel.
func Histogram(buf *hillcrypt.ImageBuffer) [][256]uint64 {
	hists := make([][256]uint64, len(buf.Channels))
	for ci, ch := range buf.Channels {
		for _, b := range ch {
			hists[ci][b]++
		}
	}
	return hists
}

// Entropy returns the Shannon entropy of buf in bits per byte, in [0, 8].
// Convention: the distribution is pooled across all channels of the
// buffer, so one value describes the whole image.
func Entropy(buf *hillcrypt.ImageBuffer) float64 {
	var counts [256]uint64
	var total uint64
	for _, ch := range buf.Channels {
		for _, b := range ch {
			counts[b]++
		}
		total += uint64(len(ch))
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// Correlation returns the Pearson correlation coefficient between the
// byte sequences of a and b (channels concatenated in order), in [-1, 1].
// Near 0 is expected between a plaintext and a good ciphertext; 1 between
// a plaintext and its exact reconstruction. Fails with ErrShapeMismatch
// when the buffers hold different byte counts; a zero-variance input
// makes the coefficient undefined and yields 0.
func Correlation(a, b *hillcrypt.ImageBuffer) (float64, error) {
	lenA := totalLen(a)
	lenB := totalLen(b)
	if lenA != lenB {
		return 0, fmt.Errorf("%w: %d bytes vs %d bytes",
			hillcrypt.ErrShapeMismatch, lenA, lenB)
	}
	if lenA == 0 {
		return 0, fmt.Errorf("%w: empty buffers", hillcrypt.ErrShapeMismatch)
	}

	n := float64(lenA)
	var sumA, sumB float64
	forEachPair(a, b, func(x, y byte) {
		sumA += float64(x)
		sumB += float64(y)
	})
	meanA := sumA / n
	meanB := sumB / n

	var cov, varA, varB float64
	forEachPair(a, b, func(x, y byte) {
		da := float64(x) - meanA
		db := float64(y) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	})
	if varA == 0 || varB == 0 {
		return 0, nil
	}
	return cov / math.Sqrt(varA*varB), nil
}

// Compare builds the full report for one plaintext/other pair: entropy
// and histograms of other, correlation between the two.
func Compare(plain, other *hillcrypt.ImageBuffer) (*hillcrypt.AnalysisReport, error) {
	corr, err := Correlation(plain, other)
	if err != nil {
		return nil, err
	}
	return &hillcrypt.AnalysisReport{
		Entropy:     Entropy(other),
		Correlation: corr,
		Histograms:  Histogram(other),
	}, nil
}

func totalLen(buf *hillcrypt.ImageBuffer) int {
	var total int
	for _, ch := range buf.Channels {
		total += len(ch)
	}
	return total
}

// forEachPair walks the concatenated channel bytes of two equal-length
// buffers in lockstep. Channel boundaries may differ between the buffers;
// only the flattened order matters.
func forEachPair(a, b *hillcrypt.ImageBuffer, fn func(x, y byte)) {
	bi, bo := 0, 0
	for _, ch := range a.Channels {
		for _, x := range ch {
			for bo >= len(b.Channels[bi]) {
				bi++
				bo = 0
			}
			fn(x, b.Channels[bi][bo])
			bo++
		}
	}
}
