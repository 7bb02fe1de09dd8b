package hillcrypt

import "time"

// =============================================================================
// Key Types
// =============================================================================

// Matrix is a square key matrix in row-major order. Entries are kept in the
// canonical residue range [0, 255]. A matrix is a valid Hill cipher key iff
// gcd(det mod 256, 256) == 1, i.e. it is invertible modulo 256.
type Matrix [][]int

// Size returns the dimension n of an n x n matrix.
func (m Matrix) Size() int {
	return len(m)
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// KeyBundle wraps a key matrix with the metadata persisted in a key file.
// A bundle is immutable once saved and is loaded fresh for each decryption.
type KeyBundle struct {
	ID          string
	Label       string
	Size        int
	Matrix      Matrix
	CreatedAt   time.Time
	Fingerprint []byte // SHA3-256 of the row-major entry bytes
}

// =============================================================================
// Image Types
// =============================================================================

// ImageBuffer is a decoded image as independent flat channels: 1 for
// grayscale, 3 for RGB, 4 for RGBA. Plaintext buffers carry Width*Height
// bytes per channel; ciphertext buffers additionally carry the block
// padding recorded in their EncryptionMetadata.
type ImageBuffer struct {
	Width    int
	Height   int
	Channels [][]byte
}

// ChannelCount returns the number of channels in the buffer.
func (b *ImageBuffer) ChannelCount() int {
	return len(b.Channels)
}

// Clone returns a deep copy of the buffer.
func (b *ImageBuffer) Clone() *ImageBuffer {
	out := &ImageBuffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: make([][]byte, len(b.Channels)),
	}
	for i, ch := range b.Channels {
		out.Channels[i] = make([]byte, len(ch))
		copy(out.Channels[i], ch)
	}
	return out
}

// EncryptionMetadata records everything the decrypting side needs for an
// exact inverse reconstruction. It is produced at encryption time and
// persisted as a sidecar next to the encrypted image; the padded ciphertext
// alone cannot recover the original dimensions.
type EncryptionMetadata struct {
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	ChannelCount int   `json:"channels"`
	KeySize      int   `json:"key_size"`
	PadLengths   []int `json:"pad_lengths"` // zero bytes appended per channel
}

// =============================================================================
// Analysis Types
// =============================================================================

// AnalysisReport holds the encryption-quality metrics for one comparison.
// Entropy is in bits per byte, pooled across all channels of the analyzed
// buffer. Correlation is the Pearson coefficient between the two buffers.
type AnalysisReport struct {
	Entropy     float64
	Correlation float64
	Histograms  [][256]uint64 // per channel of the analyzed buffer
}
