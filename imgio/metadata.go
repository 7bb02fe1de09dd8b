package imgio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"os"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
	"github.com/hillcrypt/hillcrypt-go/utils"
)

// MetadataPath returns the sidecar path for an encrypted image, the
// image path with ".meta.json" appended. Deriving it from the image path
// keeps the pairing unambiguous for the decrypting side.
func MetadataPath(imagePath string) string {
	return imagePath + ".meta.json"
}

// WriteMetadata persists the metadata record as the sidecar of imagePath.
func WriteMetadata(imagePath string, meta *hillcrypt.EncryptionMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return os.WriteFile(MetadataPath(imagePath), data, 0644)
}

// ReadMetadata loads and validates the sidecar of imagePath. An absent or
// corrupt sidecar fails with ErrMissingMetadata: decryption without the
// record would silently produce garbage, so it is refused outright.
func ReadMetadata(imagePath string) (*hillcrypt.EncryptionMetadata, error) {
	data, err := os.ReadFile(MetadataPath(imagePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrMissingMetadata, err)
	}
	var meta hillcrypt.EncryptionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrMissingMetadata, err)
	}
	if err := validateMetadata(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func validateMetadata(meta *hillcrypt.EncryptionMetadata) error {
	if meta.Width <= 0 || meta.Height <= 0 {
		return fmt.Errorf("%w: non-positive dimensions %dx%d",
			hillcrypt.ErrMissingMetadata, meta.Width, meta.Height)
	}
	switch meta.ChannelCount {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: %d channels", hillcrypt.ErrMissingMetadata, meta.ChannelCount)
	}
	if meta.KeySize < 2 || meta.KeySize > 4 {
		return fmt.Errorf("%w: key size %d", hillcrypt.ErrMissingMetadata, meta.KeySize)
	}
	if len(meta.PadLengths) != meta.ChannelCount {
		return fmt.Errorf("%w: %d pad lengths for %d channels",
			hillcrypt.ErrMissingMetadata, len(meta.PadLengths), meta.ChannelCount)
	}
	for ci, pad := range meta.PadLengths {
		if pad < 0 || pad >= meta.KeySize {
			return fmt.Errorf("%w: channel %d pad length %d",
				hillcrypt.ErrMissingMetadata, ci, pad)
		}
	}
	if _, err := utils.SafeMultiply(meta.Width, meta.Height); err != nil {
		return fmt.Errorf("%w: %v", hillcrypt.ErrMissingMetadata, err)
	}
	return nil
}

// EncodeEncrypted writes a ciphertext buffer and its metadata sidecar.
// The padded channels are not rectangular, so each one is extended with
// trailing zeros up to whole image rows; DecodeEncrypted truncates the
// surplus back using the sidecar. The container is always PNG. Both
// files are encoded in memory first so a failure leaves nothing behind.
func EncodeEncrypted(path string, buf *hillcrypt.ImageBuffer, meta *hillcrypt.EncryptionMetadata) error {
	if err := validateMetadata(meta); err != nil {
		return err
	}
	if len(buf.Channels) != meta.ChannelCount {
		return fmt.Errorf("%w: buffer has %d channels, metadata says %d",
			hillcrypt.ErrDimensionMismatch, len(buf.Channels), meta.ChannelCount)
	}
	pixels := meta.Width * meta.Height
	maxLen := 0
	for ci, ch := range buf.Channels {
		want := pixels + meta.PadLengths[ci]
		if len(ch) != want {
			return fmt.Errorf("%w: channel %d has %d bytes, metadata implies %d",
				hillcrypt.ErrDimensionMismatch, ci, len(ch), want)
		}
		if len(ch) > maxLen {
			maxLen = len(ch)
		}
	}

	rows := (maxLen + meta.Width - 1) / meta.Width
	container := &hillcrypt.ImageBuffer{
		Width:    meta.Width,
		Height:   rows,
		Channels: make([][]byte, len(buf.Channels)),
	}
	for ci, ch := range buf.Channels {
		padded := make([]byte, rows*meta.Width)
		copy(padded, ch)
		container.Channels[ci] = padded
	}

	img, err := ToImage(container)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(MetadataPath(path), sidecar, 0644); err != nil {
		os.Remove(path) // do not leave a ciphertext without its metadata
		return err
	}
	return nil
}

// DecodeEncrypted reads a ciphertext container and its sidecar, undoing
// the row alignment applied by EncodeEncrypted. The returned buffer holds
// exactly width*height + pad bytes per channel, ready for cipher.Decrypt.
func DecodeEncrypted(path string) (*hillcrypt.ImageBuffer, *hillcrypt.EncryptionMetadata, error) {
	meta, err := ReadMetadata(path)
	if err != nil {
		return nil, nil, err
	}

	container, err := Decode(path)
	if err != nil {
		return nil, nil, err
	}
	if container.Width != meta.Width {
		return nil, nil, fmt.Errorf("%w: container width %d, metadata width %d",
			hillcrypt.ErrDimensionMismatch, container.Width, meta.Width)
	}

	// A 4-channel ciphertext whose transformed alpha bytes all happen to
	// be 255 decodes as an opaque 3-channel image; restore the channel.
	if meta.ChannelCount == 4 && len(container.Channels) == 3 {
		alpha := make([]byte, len(container.Channels[0]))
		for i := range alpha {
			alpha[i] = 255
		}
		container.Channels = append(container.Channels, alpha)
	}
	if len(container.Channels) != meta.ChannelCount {
		return nil, nil, fmt.Errorf("%w: container has %d channels, metadata says %d",
			hillcrypt.ErrDimensionMismatch, len(container.Channels), meta.ChannelCount)
	}

	pixels := meta.Width * meta.Height
	out := &hillcrypt.ImageBuffer{
		Width:    meta.Width,
		Height:   meta.Height,
		Channels: make([][]byte, meta.ChannelCount),
	}
	for ci, ch := range container.Channels {
		want := pixels + meta.PadLengths[ci]
		if len(ch) < want {
			return nil, nil, fmt.Errorf("%w: container channel %d holds %d bytes, metadata implies %d",
				hillcrypt.ErrDimensionMismatch, ci, len(ch), want)
		}
		out.Channels[ci] = ch[:want]
	}
	return out, meta, nil
}
