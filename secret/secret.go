// Package secret generates, derives and encodes the opaque HMAC signing
// secrets consumed by goToken configuration.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DefaultLength is the secret size in bytes used by presets and the CLI.
const DefaultLength = 32

// Labels used when deriving per-kind secrets from one master secret.
const (
	LabelAccess  = "gotoken access v1"
	LabelRefresh = "gotoken refresh v1"
)

var (
	ErrInvalidLength = errors.New("secret length must be > 0")
	ErrEmptyMaster   = errors.New("master secret is empty")
)

// Generate returns n bytes from crypto/rand.
func Generate(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	out := make([]byte, n)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return out, nil
}

// MustGenerate is Generate for presets; it panics if the system RNG fails.
func MustGenerate(n int) []byte {
	out, err := Generate(n)
	if err != nil {
		panic(err)
	}
	return out
}

// Derive expands master into an n-byte key bound to label using HKDF-SHA256.
// Distinct labels yield independent keys from the same master.
func Derive(master []byte, label string, n int) ([]byte, error) {
	if len(master) == 0 {
		return nil, ErrEmptyMaster
	}
	if n <= 0 {
		return nil, ErrInvalidLength
	}
	out := make([]byte, n)
	r := hkdf.New(sha256.New, master, nil, []byte(label))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

// DerivePair returns the access and refresh secrets for master.
func DerivePair(master []byte, n int) (access, refresh []byte, err error) {
	access, err = Derive(master, LabelAccess, n)
	if err != nil {
		return nil, nil, err
	}
	refresh, err = Derive(master, LabelRefresh, n)
	if err != nil {
		return nil, nil, err
	}
	return access, refresh, nil
}

// Encode renders b as unpadded base64url.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a secret from configuration. Values prefixed with "base64:"
// are decoded as standard or url-safe base64 (padding optional); anything
// else is taken as raw bytes.
func Decode(s string) ([]byte, error) {
	raw, ok := strings.CutPrefix(s, "base64:")
	if !ok {
		if s == "" {
			return nil, nil
		}
		return []byte(s), nil
	}
	raw = strings.TrimRight(strings.TrimSpace(raw), "=")
	if strings.ContainsAny(raw, "+/") {
		b, err := base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode base64 secret: %w", err)
		}
		return b, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode base64 secret: %w", err)
	}
	return b, nil
}
