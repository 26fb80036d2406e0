package scrypt

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	xscrypt "golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

var storedHashPattern = regexp.MustCompile(`^[0-9a-f]{32}:[0-9a-f]{128}$`)

// fastParams keeps property tests quick while exercising every stage.
func fastParams() Params {
	return Params{N: 16, R: 1, P: 1, KeyLen: DefaultKeyLen, SaltLen: DefaultSaltLen}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	out, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return out
}

func TestSalsa208_RFC7914Vector(t *testing.T) {
	input := mustHex(t, "7e879a21 4f3ec986 7ca940e6 41718f26 baee555b 8c61c1b5 0df84611 6dcd3b1d "+
		"ee24f319 df9b3d85 14121e4b 5ac5aa32 76021d29 09c74829 edebc68d b8b8c25e")
	expected := mustHex(t, "a41f859c 6608cc99 3b81cacb 020cef05 044b2181 a2fd337d fd7b1c63 96682f29 "+
		"b4393168 e3c9e6bc fe6bc5b7 a06d96ba e424cc10 2c91745c 24ad673d c7618f81")

	var block [16]uint32
	for i := range block {
		block[i] = binary.LittleEndian.Uint32(input[4*i:])
	}
	var zero [16]uint32
	salsa208(&block, zero[:])

	out := make([]byte, 64)
	for i, w := range block {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	require.Equal(t, expected, out)
}

func TestKey_RFC7914Vectors(t *testing.T) {
	cases := []struct {
		name     string
		password string
		salt     string
		params   Params
		expected string
	}{
		{
			name:     "empty",
			params:   Params{N: 16, R: 1, P: 1, KeyLen: 64},
			expected: "77d6576238657b203b19ca42c18a0497f16b4844e3074ae8dfdffa3fede21442fcd0069ded0948f8326a753a0fc81f17e8d3e0fb2e0d3628cf35e20c38d18906",
		},
		{
			name:     "password NaCl",
			password: "password",
			salt:     "NaCl",
			params:   Params{N: 1024, R: 8, P: 16, KeyLen: 64, MaxMemory: 1 << 24},
			expected: "fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b3731622eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := Key([]byte(tc.password), []byte(tc.salt), tc.params)
			require.NoError(t, err)
			require.Equal(t, tc.expected, hex.EncodeToString(key))
		})
	}
}

func TestKey_MatchesReferenceImplementation(t *testing.T) {
	params := Params{N: 64, R: 4, P: 2, KeyLen: 48}
	for _, pw := range []string{"", "a", "correct horse battery staple", "pässwörd"} {
		got, err := Key([]byte(pw), []byte("0123456789abcdef"), params)
		require.NoError(t, err)
		want, err := xscrypt.Key([]byte(pw), []byte("0123456789abcdef"), params.N, params.R, params.P, params.KeyLen)
		require.NoError(t, err)
		require.Equal(t, want, got, pw)
	}
}

func TestParamsValidate(t *testing.T) {
	base := fastParams()
	cases := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"N not power of two", func(p *Params) { p.N = 15 }, ErrInvalidCost},
		{"N one", func(p *Params) { p.N = 1 }, ErrInvalidCost},
		{"N zero", func(p *Params) { p.N = 0 }, ErrInvalidCost},
		{"r zero", func(p *Params) { p.R = 0 }, ErrInvalidBlockSize},
		{"p zero", func(p *Params) { p.P = 0 }, ErrInvalidParallelism},
		{"p too large", func(p *Params) { p.P = 1 << 30 }, ErrInvalidParallelism},
		{"key length zero", func(p *Params) { p.KeyLen = 0 }, ErrInvalidKeyLength},
		{"memory ceiling", func(p *Params) { p.MaxMemory = 1024 }, ErrMemoryLimit},
		{"huge N under default ceiling", func(p *Params) { p.N = 1 << 36; p.R = 16; p.MaxMemory = 0 }, ErrMemoryLimit},
		{"just over default ceiling", func(p *Params) { p.N = 1 << 15; p.R = 16; p.MaxMemory = 0 }, ErrMemoryLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			err := p.Validate()
			require.ErrorIs(t, err, tc.err)
			require.ErrorIs(t, err, ErrInvalidParams)

			_, err = Key([]byte("pw"), []byte("salt"), p)
			require.ErrorIs(t, err, tc.err)
		})
	}

	require.NoError(t, DefaultParams().Validate())
	require.Zero(t, DefaultParams().MaxMemory)
}

func TestHasher_DefaultsMatchStoredFormat(t *testing.T) {
	saltBytes := bytes.Repeat([]byte{0xab}, DefaultSaltLen)
	h, err := NewHasher(WithRandom(bytes.NewReader(saltBytes)))
	require.NoError(t, err)

	stored, err := h.Hash("Sup3r$ecret")
	require.NoError(t, err)
	require.Regexp(t, storedHashPattern, stored)

	saltHex := hex.EncodeToString(saltBytes)
	require.True(t, strings.HasPrefix(stored, saltHex+":"))

	want, err := xscrypt.Key([]byte("Sup3r$ecret"), []byte(saltHex), DefaultN, DefaultR, DefaultP, DefaultKeyLen)
	require.NoError(t, err)
	require.Equal(t, saltHex+":"+hex.EncodeToString(want), stored)
	require.True(t, h.Verify(stored, "Sup3r$ecret"))
}

func TestHasher_RoundTripAndRejection(t *testing.T) {
	h, err := NewHasher(WithParams(fastParams()))
	require.NoError(t, err)

	passwords := []string{"", "short", "Tr0ub4dor&3", strings.Repeat("x", 4096), "日本語のパス"}
	for _, pw := range passwords {
		stored, err := h.Hash(pw)
		require.NoError(t, err)
		require.Regexp(t, storedHashPattern, stored)
		require.True(t, h.Verify(stored, pw))
		require.False(t, h.Verify(stored, pw+"!"))
	}
}

func TestHasher_SaltUniqueness(t *testing.T) {
	h, err := NewHasher(WithParams(fastParams()))
	require.NoError(t, err)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.True(t, h.Verify(first, "same-password"))
	require.True(t, h.Verify(second, "same-password"))
}

func TestHasher_NormalizesPasswords(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	h, err := NewHasher(WithParams(fastParams()))
	require.NoError(t, err)
	stored, err := h.Hash(composed)
	require.NoError(t, err)
	require.True(t, h.Verify(stored, decomposed))

	compat, err := NewHasher(WithParams(fastParams()), WithNormalization(norm.NFKC))
	require.NoError(t, err)
	stored, err = compat.Hash("\ufb01le")
	require.NoError(t, err)
	require.True(t, compat.Verify(stored, "file"))
}

func TestHasher_MalformedStoredHash(t *testing.T) {
	h, err := NewHasher(WithParams(fastParams()))
	require.NoError(t, err)
	valid, err := h.Hash("pw")
	require.NoError(t, err)

	for _, stored := range []string{
		"",
		"not-a-valid-hash",
		"aa:bb",
		":",
		valid + ":extra",
		"zz" + valid[2:],
		valid[:33] + "zz" + valid[35:],
		valid[:len(valid)-2],
		":" + valid[33:],
	} {
		require.NotPanics(t, func() {
			require.False(t, h.Verify(stored, "pw"), stored)
		})
	}
}

func TestHasher_RandomFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	h, err := NewHasher(WithParams(fastParams()), WithRandom(iotest.ErrReader(boom)))
	require.NoError(t, err)

	_, err = h.Hash("pw")
	require.ErrorIs(t, err, boom)
}

func TestNewHasher_RejectsInvalidParams(t *testing.T) {
	_, err := NewHasher(WithParams(Params{N: 3, R: 1, P: 1, KeyLen: 64, SaltLen: 16}))
	require.ErrorIs(t, err, ErrInvalidCost)

	p := fastParams()
	p.SaltLen = 0
	_, err = NewHasher(WithParams(p))
	require.ErrorIs(t, err, ErrInvalidSaltLength)
}
