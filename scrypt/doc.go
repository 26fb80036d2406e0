// Package scrypt implements the memory-hard scrypt key derivation function on
// top of the Salsa20/8 core and PBKDF2-HMAC-SHA256, and exposes a Hasher that
// produces and verifies stored credentials in the "salt_hex:key_hex" format.
//
// The derived keys are byte-compatible with hashes written by the existing
// authentication backend: the hex text of the salt, not its raw bytes, is fed
// to the KDF, and passwords are Unicode-normalized before derivation.
package scrypt
