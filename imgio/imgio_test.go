package imgio

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
)

func patternBuffer(w, h, channels int) *hillcrypt.ImageBuffer {
	buf := &hillcrypt.ImageBuffer{Width: w, Height: h, Channels: make([][]byte, channels)}
	for ci := range buf.Channels {
		ch := make([]byte, w*h)
		for i := range ch {
			ch[i] = byte((i*7 + ci*31) % 256)
		}
		buf.Channels[ci] = ch
	}
	return buf
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		ext      string
		channels int
	}{
		{"gray png", ".png", 1},
		{"rgb png", ".png", 3},
		{"rgba png", ".png", 4},
		{"gray bmp", ".bmp", 1},
		{"rgb bmp", ".bmp", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "img"+tc.ext)
			want := patternBuffer(17, 9, tc.channels)
			if tc.channels == 4 {
				// Keep at least one non-255 alpha byte so the decoder
				// does not collapse the image to 3 opaque channels.
				want.Channels[3][0] = 0
			}

			require.NoError(t, Encode(path, want))

			got, err := Decode(path)
			require.NoError(t, err)
			require.Equal(t, want.Width, got.Width)
			require.Equal(t, want.Height, got.Height)
			require.Equal(t, want.Channels, got.Channels)
		})
	}
}

func TestEncodeRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	err := Encode(path, patternBuffer(4, 4, 3))
	require.Error(t, err)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestFromImageOpaqueDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 0; i < 6; i++ {
		img.Pix[i*4] = byte(i * 40)
		img.Pix[i*4+1] = byte(i * 10)
		img.Pix[i*4+2] = byte(255 - i)
		img.Pix[i*4+3] = 255
	}

	buf, err := FromImage(img)
	require.NoError(t, err)
	require.Equal(t, 3, buf.ChannelCount())
	require.Equal(t, []byte{0, 40, 80, 120, 160, 200}, buf.Channels[0])
}

func TestFromImageGrayStride(t *testing.T) {
	// A subimage keeps the parent's stride, exercising the row-wise copy.
	parent := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range parent.Pix {
		parent.Pix[i] = byte(i)
	}
	sub := parent.SubImage(image.Rect(2, 2, 6, 5)).(*image.Gray)

	buf, err := FromImage(sub)
	require.NoError(t, err)
	require.Equal(t, 4, buf.Width)
	require.Equal(t, 3, buf.Height)
	require.Equal(t, []byte{18, 19, 20, 21, 26, 27, 28, 29, 34, 35, 36, 37}, buf.Channels[0])
}

func TestToImageRejectsBadShapes(t *testing.T) {
	_, err := ToImage(&hillcrypt.ImageBuffer{Width: 2, Height: 2, Channels: [][]byte{{1, 2, 3}}})
	require.ErrorIs(t, err, hillcrypt.ErrDimensionMismatch)

	_, err = ToImage(&hillcrypt.ImageBuffer{
		Width: 1, Height: 1,
		Channels: [][]byte{{1}, {2}},
	})
	require.ErrorIs(t, err, hillcrypt.ErrDimensionMismatch)
}

func TestEncryptedContainerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cipher.png")
	meta := &hillcrypt.EncryptionMetadata{
		Width: 10, Height: 7, ChannelCount: 3, KeySize: 3,
		PadLengths: []int{2, 2, 2},
	}
	want := &hillcrypt.ImageBuffer{Width: 10, Height: 7, Channels: make([][]byte, 3)}
	for ci := range want.Channels {
		ch := make([]byte, 10*7+2)
		for i := range ch {
			ch[i] = byte((i*13 + ci) % 256)
		}
		want.Channels[ci] = ch
	}

	require.NoError(t, EncodeEncrypted(path, want, meta))

	got, gotMeta, err := DecodeEncrypted(path)
	require.NoError(t, err)
	require.Equal(t, meta, gotMeta)
	require.Equal(t, want.Channels, got.Channels)
	require.Equal(t, 10, got.Width)
	require.Equal(t, 7, got.Height)
}

func TestEncryptedContainerAlphaChannel(t *testing.T) {
	// All-255 alpha ciphertext decodes as an opaque image; the container
	// layer must restore the fourth channel from the metadata.
	path := filepath.Join(t.TempDir(), "cipher.png")
	meta := &hillcrypt.EncryptionMetadata{
		Width: 4, Height: 4, ChannelCount: 4, KeySize: 2,
		PadLengths: []int{0, 0, 0, 0},
	}
	want := &hillcrypt.ImageBuffer{Width: 4, Height: 4, Channels: make([][]byte, 4)}
	for ci := 0; ci < 3; ci++ {
		ch := make([]byte, 16)
		for i := range ch {
			ch[i] = byte(i + ci)
		}
		want.Channels[ci] = ch
	}
	alpha := make([]byte, 16)
	for i := range alpha {
		alpha[i] = 255
	}
	want.Channels[3] = alpha

	require.NoError(t, EncodeEncrypted(path, want, meta))

	got, _, err := DecodeEncrypted(path)
	require.NoError(t, err)
	require.Equal(t, 4, got.ChannelCount())
	require.Equal(t, want.Channels, got.Channels)
}

func TestDecodeEncryptedMissingSidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cipher.png")
	require.NoError(t, Encode(path, patternBuffer(4, 4, 3)))

	_, _, err := DecodeEncrypted(path)
	require.ErrorIs(t, err, hillcrypt.ErrMissingMetadata)
}

func TestReadMetadataRejectsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cipher.png")
	require.NoError(t, os.WriteFile(MetadataPath(path), []byte("{not json"), 0644))

	_, err := ReadMetadata(path)
	require.ErrorIs(t, err, hillcrypt.ErrMissingMetadata)
}

func TestReadMetadataRejectsBadFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cipher.png")
	record := `{"width":8,"height":8,"channels":3,"key_size":3,"pad_lengths":[1,1,5]}`
	require.NoError(t, os.WriteFile(MetadataPath(path), []byte(record), 0644))

	_, err := ReadMetadata(path)
	require.ErrorIs(t, err, hillcrypt.ErrMissingMetadata)
}

func TestEncodeEncryptedRejectsShortChannel(t *testing.T) {
	meta := &hillcrypt.EncryptionMetadata{
		Width: 4, Height: 4, ChannelCount: 1, KeySize: 2,
		PadLengths: []int{1},
	}
	buf := &hillcrypt.ImageBuffer{Width: 4, Height: 4, Channels: [][]byte{make([]byte, 16)}}

	err := EncodeEncrypted(filepath.Join(t.TempDir(), "c.png"), buf, meta)
	require.ErrorIs(t, err, hillcrypt.ErrDimensionMismatch)
}
