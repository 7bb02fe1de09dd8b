// Package imgio converts images on disk to and from the flat per-channel
// representation the cipher works on, and persists the ciphertext
// container: a lossless PNG holding the padded transformed bytes plus a
// JSON metadata sidecar the decrypting side reads back.
package imgio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
	"github.com/hillcrypt/hillcrypt-go/utils"
)

// Decode reads a PNG or BMP file into an ImageBuffer. Grayscale images
// produce 1 channel, opaque color images 3, images with an alpha channel
// 4. Values are non-premultiplied so the round-trip is byte-exact.
func Decode(path string) (*hillcrypt.ImageBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(img)
}

// FromImage flattens a decoded image into independent channels.
func FromImage(img image.Image) (*hillcrypt.ImageBuffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels, err := utils.SafeMultiply(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	if err := utils.CheckLength(pixels, utils.MaxImagePixels); err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrDimensionMismatch, err)
	}
	if pixels == 0 {
		return nil, fmt.Errorf("%w: empty image", hillcrypt.ErrDimensionMismatch)
	}

	if gray, ok := img.(*image.Gray); ok {
		ch := make([]byte, pixels)
		for y := 0; y < h; y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
			copy(ch[y*w:], row)
		}
		return &hillcrypt.ImageBuffer{Width: w, Height: h, Channels: [][]byte{ch}}, nil
	}

	// 8-bit grayscale BMPs decode as paletted images; an all-gray palette
	// still means a single channel.
	if pal, ok := img.(*image.Paletted); ok && grayPalette(pal.Palette) {
		ch := make([]byte, pixels)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				ch[i] = color.GrayModel.Convert(pal.At(x, y)).(color.Gray).Y
				i++
			}
		}
		return &hillcrypt.ImageBuffer{Width: w, Height: h, Channels: [][]byte{ch}}, nil
	}

	r := make([]byte, pixels)
	g := make([]byte, pixels)
	b := make([]byte, pixels)
	a := make([]byte, pixels)
	opaque := true
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			r[i], g[i], b[i], a[i] = c.R, c.G, c.B, c.A
			if c.A != 255 {
				opaque = false
			}
			i++
		}
	}
	channels := [][]byte{r, g, b, a}
	if opaque {
		channels = channels[:3]
	}
	return &hillcrypt.ImageBuffer{Width: w, Height: h, Channels: channels}, nil
}

func grayPalette(p color.Palette) bool {
	if len(p) == 0 {
		return false
	}
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

// ToImage reassembles a buffer whose channels hold exactly Width*Height
// bytes each into a drawable image.
func ToImage(buf *hillcrypt.ImageBuffer) (image.Image, error) {
	pixels, err := utils.SafeMultiply(buf.Width, buf.Height)
	if err != nil || pixels == 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d",
			hillcrypt.ErrDimensionMismatch, buf.Width, buf.Height)
	}
	for ci, ch := range buf.Channels {
		if len(ch) != pixels {
			return nil, fmt.Errorf("%w: channel %d has %d bytes, want %d",
				hillcrypt.ErrDimensionMismatch, ci, len(ch), pixels)
		}
	}

	switch len(buf.Channels) {
	case 1:
		img := image.NewGray(image.Rect(0, 0, buf.Width, buf.Height))
		for y := 0; y < buf.Height; y++ {
			copy(img.Pix[y*img.Stride:], buf.Channels[0][y*buf.Width:(y+1)*buf.Width])
		}
		return img, nil
	case 3, 4:
		img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
		r, g, b := buf.Channels[0], buf.Channels[1], buf.Channels[2]
		var a []byte
		if len(buf.Channels) == 4 {
			a = buf.Channels[3]
		}
		for i := 0; i < pixels; i++ {
			img.Pix[i*4] = r[i]
			img.Pix[i*4+1] = g[i]
			img.Pix[i*4+2] = b[i]
			if a != nil {
				img.Pix[i*4+3] = a[i]
			} else {
				img.Pix[i*4+3] = 255
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %d channels, want 1, 3 or 4",
			hillcrypt.ErrDimensionMismatch, len(buf.Channels))
	}
}

// Encode writes a plaintext buffer to path in a lossless format chosen by
// the file extension (.png or .bmp). The file is written only after the
// whole image has been encoded in memory.
func Encode(path string, buf *hillcrypt.ImageBuffer) error {
	img, err := ToImage(buf)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(&out, img)
	case ".bmp":
		err = bmp.Encode(&out, img)
	default:
		return fmt.Errorf("unsupported output format %q (use .png or .bmp)", ext)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, out.Bytes(), 0644)
}
