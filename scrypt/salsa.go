package scrypt

import "math/bits"

// salsa208 replaces b with Salsa20/8(b XOR in). Only the first 16 words of in
// are read.
func salsa208(b *[16]uint32, in []uint32) {
	_ = in[15]
	for i := range b {
		b[i] ^= in[i]
	}
	w := *b
	for i := 0; i < 8; i += 2 {
		// columns
		quarterRound(&w, 0, 4, 8, 12)
		quarterRound(&w, 5, 9, 13, 1)
		quarterRound(&w, 10, 14, 2, 6)
		quarterRound(&w, 15, 3, 7, 11)
		// rows
		quarterRound(&w, 0, 1, 2, 3)
		quarterRound(&w, 5, 6, 7, 4)
		quarterRound(&w, 10, 11, 8, 9)
		quarterRound(&w, 15, 12, 13, 14)
	}
	for i := range b {
		b[i] += w[i]
	}
	clear(w[:])
}

func quarterRound(w *[16]uint32, a, b, c, d int) {
	w[b] ^= bits.RotateLeft32(w[a]+w[d], 7)
	w[c] ^= bits.RotateLeft32(w[b]+w[a], 9)
	w[d] ^= bits.RotateLeft32(w[c]+w[b], 13)
	w[a] ^= bits.RotateLeft32(w[d]+w[c], 18)
}
