package scrypt

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

func pbkdf2SHA256(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New)
}
