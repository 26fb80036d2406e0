package scrypt

import "encoding/binary"

const blockWords = 16

// arena owns every secret-bearing buffer used by a single derivation.
type arena struct {
	v  []uint32
	xy []uint32
	x  [blockWords]uint32
}

func newArena(n, r int) *arena {
	return &arena{
		v:  make([]uint32, 32*r*n),
		xy: make([]uint32, 64*r),
	}
}

func (a *arena) wipe() {
	clear(a.v)
	clear(a.xy)
	clear(a.x[:])
}

// blockMix runs BlockMix over the 2r blocks of in and writes the shuffled
// result to out: even blocks fill the first half, odd blocks the second.
func blockMix(x *[blockWords]uint32, in, out []uint32, r int) {
	copy(x[:], in[(2*r-1)*blockWords:])
	for i := 0; i < 2*r; i += 2 {
		salsa208(x, in[i*blockWords:])
		copy(out[i*8:], x[:])

		salsa208(x, in[(i+1)*blockWords:])
		copy(out[r*blockWords+i*8:], x[:])
	}
}

// integerify reads the first 64-bit little-endian word of the last block.
func integerify(x []uint32, r int) uint64 {
	k := (2*r - 1) * blockWords
	return uint64(x[k]) | uint64(x[k+1])<<32
}

// roMix mixes a single 128*r byte lane of b in place.
func roMix(b []byte, r, n int, a *arena) {
	words := 32 * r
	x := a.xy[:words]
	y := a.xy[words:]

	for i := range x {
		x[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	for i := 0; i < n; i++ {
		copy(a.v[i*words:], x)
		blockMix(&a.x, x, y, r)
		x, y = y, x
	}
	mask := uint64(n - 1)
	for i := 0; i < n; i++ {
		j := int(integerify(x, r) & mask)
		vj := a.v[j*words : (j+1)*words]
		for k := range x {
			x[k] ^= vj[k]
		}
		blockMix(&a.x, x, y, r)
		x, y = y, x
	}
	for i, w := range x {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
}
