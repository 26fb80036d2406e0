package scrypt

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const hashSeparator = ":"

// Option customizes a Hasher.
type Option func(*Hasher)

// WithParams overrides the KDF parameters.
func WithParams(params Params) Option {
	return func(h *Hasher) {
		h.params = params
	}
}

// WithRandom sets the salt source. Tests pass a deterministic reader.
func WithRandom(r io.Reader) Option {
	return func(h *Hasher) {
		if r != nil {
			h.random = r
		}
	}
}

// WithNormalization selects the Unicode normalization form applied to
// passwords before derivation.
func WithNormalization(form norm.Form) Option {
	return func(h *Hasher) {
		h.form = form
	}
}

// Hasher produces and checks stored credentials.
type Hasher struct {
	params Params
	random io.Reader
	form   norm.Form
}

// NewHasher builds a Hasher with the default parameters, crypto/rand as the
// salt source and NFC normalization unless overridden.
func NewHasher(opts ...Option) (*Hasher, error) {
	h := &Hasher{
		params: DefaultParams(),
		random: rand.Reader,
		form:   norm.NFC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if err := h.params.Validate(); err != nil {
		return nil, err
	}
	if h.params.SaltLen < 1 {
		return nil, ErrInvalidSaltLength
	}
	return h, nil
}

// Params returns the parameters used by the hasher.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash derives a new stored credential for password. The only failure mode is
// the salt source returning an error.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return "", fmt.Errorf("scrypt: read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	clear(salt)

	key, err := h.derive(password, saltHex)
	if err != nil {
		return "", err
	}
	defer clear(key)
	return saltHex + hashSeparator + hex.EncodeToString(key), nil
}

// Verify reports whether password matches the stored credential. Malformed
// input yields false, exactly like a wrong password.
func (h *Hasher) Verify(stored, password string) bool {
	parts := strings.Split(stored, hashSeparator)
	if len(parts) != 2 {
		return false
	}
	saltHex, keyHex := parts[0], parts[1]
	if saltHex == "" {
		return false
	}
	if _, err := hex.DecodeString(saltHex); err != nil {
		return false
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) != h.params.KeyLen {
		return false
	}
	defer clear(expected)

	key, err := h.derive(password, saltHex)
	if err != nil {
		return false
	}
	defer clear(key)
	return keysEqual(key, expected)
}

func (h *Hasher) derive(password, saltHex string) ([]byte, error) {
	pw := []byte(h.form.String(password))
	defer clear(pw)
	return Key(pw, []byte(saltHex), h.params)
}

// keysEqual compares in time independent of where the inputs differ.
func keysEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
