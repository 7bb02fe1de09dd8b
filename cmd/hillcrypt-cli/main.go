// hillcrypt-cli encrypts and decrypts images with a Hill cipher over the
// byte alphabet and reports encryption-quality statistics.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
	"github.com/hillcrypt/hillcrypt-go/analysis"
	"github.com/hillcrypt/hillcrypt-go/cipher"
	"github.com/hillcrypt/hillcrypt-go/imgio"
	"github.com/hillcrypt/hillcrypt-go/key"
	"github.com/hillcrypt/hillcrypt-go/log"
)

// default output of the operational commands.
var output io.Writer = os.Stdout

func banner() {
	fmt.Fprintf(output, "hillcrypt %v\n", hillcrypt.Version)
	fmt.Fprintln(output, "WARNING: the Hill cipher is a classical cipher for educational use,")
	fmt.Fprintln(output, "WARNING: not a substitute for modern authenticated encryption.")
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level",
}

var sizeFlag = &cli.IntFlag{
	Name:  "size",
	Value: 3,
	Usage: "Key matrix dimension, between 2 and 4.",
}

var labelFlag = &cli.StringFlag{
	Name:  "label",
	Usage: "Free-form label stored in the key file.",
}

func newLogger(c *cli.Context) log.Logger {
	level := log.InfoLevel
	if c.Bool(verboseFlag.Name) {
		level = log.DebugLevel
	}
	return log.New(nil, level).Named("hillcrypt")
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "hillcrypt"
	app.Version = hillcrypt.Version
	app.Usage = "Hill cipher image encryption tool"
	app.Flags = []cli.Flag{verboseFlag}
	cli.VersionPrinter = func(c *cli.Context) {
		banner()
	}
	app.Commands = []*cli.Command{
		{
			Name:      "keygen",
			Usage:     "Generate a random invertible key matrix and save it",
			ArgsUsage: "<keyfile>",
			Flags:     []cli.Flag{sizeFlag, labelFlag},
			Action:    keygenCmd,
		},
		{
			Name:  "key",
			Usage: "Key file operations",
			Subcommands: []*cli.Command{
				{
					Name:      "validate",
					Usage:     "Check that a key file is intact and holds a valid key",
					ArgsUsage: "<keyfile>",
					Action:    validateCmd,
				},
			},
		},
		{
			Name:      "encrypt",
			Usage:     "Encrypt an image, writing the ciphertext container and its metadata sidecar",
			ArgsUsage: "<input> <output> <keyfile>",
			Action:    encryptCmd,
		},
		{
			Name:      "decrypt",
			Usage:     "Decrypt a ciphertext container back to the original image",
			ArgsUsage: "<input> <output> <keyfile>",
			Action:    decryptCmd,
		},
		{
			Name:      "analyze",
			Usage:     "Report entropy of an image, or entropy plus correlation for a pair",
			ArgsUsage: "<image> [other]",
			Action:    analyzeCmd,
		},
	}
	return app
}

// exitCode maps the error taxonomy to stable process exit codes so shell
// callers can branch on the failure kind.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, hillcrypt.ErrInvalidKey):
		return 2
	case errors.Is(err, hillcrypt.ErrKeyGenerationExhausted):
		return 3
	case errors.Is(err, hillcrypt.ErrKeyLoad):
		return 4
	case errors.Is(err, hillcrypt.ErrMissingMetadata):
		return 5
	case errors.Is(err, hillcrypt.ErrDimensionMismatch):
		return 6
	case errors.Is(err, hillcrypt.ErrShapeMismatch):
		return 7
	case errors.Is(err, hillcrypt.ErrNotInvertible):
		return 8
	default:
		return 1
	}
}

func wrapExit(err error) error {
	if err == nil {
		return nil
	}
	return cli.Exit(err.Error(), exitCode(err))
}

func keygenCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: keygen <keyfile>", 1)
	}
	l := newLogger(c)
	size := c.Int(sizeFlag.Name)

	m, err := key.Generate(size)
	if err != nil {
		return wrapExit(err)
	}
	b := key.NewBundle(m, c.String(labelFlag.Name))
	if err := key.Save(c.Args().Get(0), b); err != nil {
		return wrapExit(err)
	}

	l.Infow("key generated", "id", b.ID, "size", size, "file", c.Args().Get(0))
	fmt.Fprintf(output, "key %s (%dx%d) written to %s\n", b.ID, size, size, c.Args().Get(0))
	fmt.Fprintf(output, "fingerprint: %s\n", hex.EncodeToString(b.Fingerprint))
	return nil
}

func validateCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: key validate <keyfile>", 1)
	}
	b, err := key.Load(c.Args().Get(0))
	if err != nil {
		return wrapExit(err)
	}
	fmt.Fprintf(output, "key %s (%dx%d) is valid\n", b.ID, b.Size, b.Size)
	fmt.Fprintf(output, "fingerprint: %s\n", hex.EncodeToString(b.Fingerprint))
	return nil
}

func encryptCmd(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: encrypt <input> <output> <keyfile>", 1)
	}
	l := newLogger(c)
	input, outPath, keyfile := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	b, err := key.Load(keyfile)
	if err != nil {
		return wrapExit(err)
	}
	img, err := imgio.Decode(input)
	if err != nil {
		return wrapExit(err)
	}
	l.Debugw("image decoded", "width", img.Width, "height", img.Height, "channels", img.ChannelCount())

	enc, meta, err := cipher.Encrypt(b.Matrix, img)
	if err != nil {
		return wrapExit(err)
	}
	if err := imgio.EncodeEncrypted(outPath, enc, meta); err != nil {
		return wrapExit(err)
	}

	l.Infow("image encrypted", "input", input, "output", outPath, "key", b.ID)
	fmt.Fprintf(output, "encrypted %s -> %s (+ %s)\n", input, outPath, imgio.MetadataPath(outPath))
	return nil
}

func decryptCmd(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: decrypt <input> <output> <keyfile>", 1)
	}
	l := newLogger(c)
	input, outPath, keyfile := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	b, err := key.Load(keyfile)
	if err != nil {
		return wrapExit(err)
	}
	enc, meta, err := imgio.DecodeEncrypted(input)
	if err != nil {
		return wrapExit(err)
	}
	plain, err := cipher.Decrypt(b.Matrix, enc, meta)
	if err != nil {
		return wrapExit(err)
	}
	if err := imgio.Encode(outPath, plain); err != nil {
		return wrapExit(err)
	}

	l.Infow("image decrypted", "input", input, "output", outPath, "key", b.ID)
	fmt.Fprintf(output, "decrypted %s -> %s\n", input, outPath)
	return nil
}

func analyzeCmd(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return cli.Exit("usage: analyze <image> [other]", 1)
	}

	first, err := decodeAny(c.Args().Get(0))
	if err != nil {
		return wrapExit(err)
	}
	fmt.Fprintf(output, "%s: %dx%d, %d channels, entropy %.4f bits/byte\n",
		c.Args().Get(0), first.Width, first.Height, first.ChannelCount(), analysis.Entropy(first))

	if c.NArg() == 1 {
		return nil
	}

	second, err := decodeAny(c.Args().Get(1))
	if err != nil {
		return wrapExit(err)
	}
	report, err := analysis.Compare(first, second)
	if err != nil {
		return wrapExit(err)
	}
	fmt.Fprintf(output, "%s: entropy %.4f bits/byte\n", c.Args().Get(1), report.Entropy)
	fmt.Fprintf(output, "correlation: %.6f\n", report.Correlation)
	return nil
}

// decodeAny reads either a plain image or an encrypted container, so both
// sides of an analyze pair may be ciphertexts.
func decodeAny(path string) (*hillcrypt.ImageBuffer, error) {
	if _, err := os.Stat(imgio.MetadataPath(path)); err == nil {
		buf, _, err := imgio.DecodeEncrypted(path)
		return buf, err
	}
	return imgio.Decode(path)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		code := 1
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			code = ec.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}
