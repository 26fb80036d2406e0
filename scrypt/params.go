package scrypt

import (
	"errors"
	"fmt"
)

const (
	// DefaultN is the CPU/memory cost used by stored credentials.
	DefaultN = 16384
	// DefaultR is the block size parameter.
	DefaultR = 16
	// DefaultP is the parallelization parameter.
	DefaultP = 1
	// DefaultKeyLen is the derived key length in bytes.
	DefaultKeyLen = 64
	// DefaultSaltLen is the number of random salt bytes generated per hash.
	DefaultSaltLen = 16
	// DefaultMaxMemory is the working set ceiling applied when
	// Params.MaxMemory is zero. It holds the default parameters with room
	// for p up to 16384.
	DefaultMaxMemory = 64 << 20

	maxKeyLen = (1<<32 - 1) * 32
)

var (
	// ErrInvalidParams is the parent of every parameter validation error.
	ErrInvalidParams = errors.New("scrypt: invalid parameters")
	// ErrInvalidCost indicates N is not a power of two greater than one.
	ErrInvalidCost = fmt.Errorf("%w: N must be a power of two greater than 1", ErrInvalidParams)
	// ErrInvalidBlockSize indicates r is not positive.
	ErrInvalidBlockSize = fmt.Errorf("%w: r must be positive", ErrInvalidParams)
	// ErrInvalidParallelism indicates p is out of range for the block size.
	ErrInvalidParallelism = fmt.Errorf("%w: p out of range", ErrInvalidParams)
	// ErrInvalidKeyLength indicates the requested output length is out of range.
	ErrInvalidKeyLength = fmt.Errorf("%w: key length out of range", ErrInvalidParams)
	// ErrInvalidSaltLength indicates the salt length is not positive.
	ErrInvalidSaltLength = fmt.Errorf("%w: salt length must be positive", ErrInvalidParams)
	// ErrMemoryLimit indicates the working set would exceed MaxMemory.
	ErrMemoryLimit = fmt.Errorf("%w: memory limit exceeded", ErrInvalidParams)
)

// Params configures the KDF cost. The zero value is not usable; start from
// DefaultParams.
type Params struct {
	N       int
	R       int
	P       int
	KeyLen  int
	SaltLen int
	// MaxMemory caps 128*r*(N+p) in bytes. Zero means DefaultMaxMemory.
	MaxMemory uint64
}

// DefaultParams returns the parameter set every stored credential uses.
func DefaultParams() Params {
	return Params{
		N:       DefaultN,
		R:       DefaultR,
		P:       DefaultP,
		KeyLen:  DefaultKeyLen,
		SaltLen: DefaultSaltLen,
	}
}

// memoryCeiling returns the effective memory limit.
func (p Params) memoryCeiling() uint64 {
	if p.MaxMemory > 0 {
		return p.MaxMemory
	}
	return DefaultMaxMemory
}

// Validate checks the parameters without running the KDF.
func (p Params) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return ErrInvalidCost
	}
	if p.R < 1 {
		return ErrInvalidBlockSize
	}
	maxP := uint64(1<<32-1) * 32 / (128 * uint64(p.R))
	if p.P < 1 || uint64(p.P) > maxP {
		return ErrInvalidParallelism
	}
	if p.KeyLen < 1 || uint64(p.KeyLen) > maxKeyLen {
		return ErrInvalidKeyLength
	}
	if 128*uint64(p.R)*(uint64(p.N)+uint64(p.P)) > p.memoryCeiling() {
		return ErrMemoryLimit
	}
	return nil
}
