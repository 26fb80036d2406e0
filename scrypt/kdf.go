package scrypt

// Key derives a key of p.KeyLen bytes from password and salt. Parameters are
// validated before any work is done.
func Key(password, salt []byte, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	laneLen := 128 * p.R
	b := pbkdf2SHA256(password, salt, 1, p.P*laneLen)
	defer clear(b)

	a := newArena(p.N, p.R)
	defer a.wipe()
	for i := 0; i < p.P; i++ {
		roMix(b[i*laneLen:(i+1)*laneLen], p.R, p.N, a)
	}
	return pbkdf2SHA256(password, b, 1, p.KeyLen), nil
}
