// Package hillcrypt implements a Hill cipher for digital images.
// Pixel data is encrypted block-wise by multiplication with an invertible
// key matrix under arithmetic modulo 256, and decrypted with the modular
// inverse of that matrix. The package also provides the statistical
// routines (entropy, correlation, histograms) used to judge how well a
// ciphertext image hides its plaintext.
//
// WARNING: the Hill cipher is a classical, educational substitution
// cipher. It gives NO real confidentiality guarantees and must not be
// used to protect sensitive data.
package hillcrypt

// Version of the hillcrypt Go implementation.
const Version = "1.0.0"

// API summary:
//
// Key management:
//   - key.Generate(size) - Generate a random invertible key matrix
//   - key.Validate(rows) - Validate a manually entered matrix
//   - key.NewBundle(m, label) - Wrap a matrix with its metadata
//   - key.Save(path, bundle) / key.Load(path) - Key file round-trip
//
// Cipher:
//   - cipher.Encrypt(m, img) - Transform an image buffer, returns metadata
//   - cipher.Decrypt(m, img, meta) - Exact inverse reconstruction
//
// Analysis:
//   - analysis.Entropy(img) - Shannon entropy in bits per byte
//   - analysis.Correlation(a, b) - Pearson coefficient of two buffers
//   - analysis.Histogram(img) - Per-channel 256-bucket frequency counts
//
// Image I/O:
//   - imgio.Decode(path) / imgio.Encode(path, img) - Lossless codecs
//   - imgio.EncodeEncrypted / imgio.DecodeEncrypted - Ciphertext container
//     with its metadata sidecar
