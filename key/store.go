package key

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
)

// bundleTOML is the on-disk shape of a key file.
type bundleTOML struct {
	ID          string  `toml:"id"`
	Label       string  `toml:"label,omitempty"`
	Size        int     `toml:"size"`
	Rows        [][]int `toml:"rows"`
	CreatedAt   string  `toml:"created_at"`
	Fingerprint string  `toml:"fingerprint"`
}

// Save writes the bundle as a TOML key file, readable only by the owner.
// The record round-trips byte-exact through Load.
func Save(path string, b *hillcrypt.KeyBundle) error {
	bt := bundleTOML{
		ID:          b.ID,
		Label:       b.Label,
		Size:        b.Size,
		Rows:        b.Matrix.Clone(),
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		Fingerprint: hex.EncodeToString(b.Fingerprint),
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(bt); err != nil {
		return fmt.Errorf("encoding key file: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// Load reads a key file written by Save. Every failure mode, unreadable
// file, malformed TOML, shape or range violation, fingerprint mismatch,
// non-invertible matrix, wraps ErrKeyLoad; the matrix is revalidated so a
// hand-edited record cannot bypass the invertibility gate.
func Load(path string) (*hillcrypt.KeyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrKeyLoad, err)
	}

	var bt bundleTOML
	if err := toml.Unmarshal(data, &bt); err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrKeyLoad, err)
	}
	if bt.Size != len(bt.Rows) {
		return nil, fmt.Errorf("%w: size field %d disagrees with %d rows",
			hillcrypt.ErrKeyLoad, bt.Size, len(bt.Rows))
	}

	m, err := Validate(bt.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hillcrypt.ErrKeyLoad, err)
	}

	fp, err := hex.DecodeString(bt.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: bad fingerprint encoding: %v", hillcrypt.ErrKeyLoad, err)
	}
	if !bytes.Equal(fp, Fingerprint(m)) {
		return nil, fmt.Errorf("%w: fingerprint mismatch", hillcrypt.ErrKeyLoad)
	}

	created, err := time.Parse(time.RFC3339, bt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_at: %v", hillcrypt.ErrKeyLoad, err)
	}

	return &hillcrypt.KeyBundle{
		ID:          bt.ID,
		Label:       bt.Label,
		Size:        bt.Size,
		Matrix:      m,
		CreatedAt:   created,
		Fingerprint: fp,
	}, nil
}
