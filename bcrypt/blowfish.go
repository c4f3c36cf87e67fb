package bcrypt

const (
	subkeys       = 18
	sboxEntries   = 256
	feistelRounds = 16
)

// cipherState is the key-dependent state of the Blowfish cipher: the
// subkey array and the four substitution boxes. Every hash operation
// works on its own copy, so no locking is ever needed.
type cipherState struct {
	p              [subkeys]uint32
	s0, s1, s2, s3 [sboxEntries]uint32
}

// Returns a fresh cipher state set to the pi-digit constants.
func newCipherState() *cipherState {
	return &cipherState{
		p:  initialP,
		s0: initialS0,
		s1: initialS1,
		s2: initialS2,
		s3: initialS3,
	}
}

// The Blowfish F-function: slice the word into four bytes, use each as
// an index into one substitution box, and fold the lookups together.
func (c *cipherState) feistel(x uint32) uint32 {
	return ((c.s0[x>>24] + c.s1[x>>16&0xff]) ^ c.s2[x>>8&0xff]) + c.s3[x&0xff]
}

// Encrypts the 64-bit block (l, r) under the current state and returns
// the ciphertext halves. Reads the state, never writes it.
func (c *cipherState) encipher(l, r uint32) (uint32, uint32) {
	l ^= c.p[0]
	for i := 1; i < feistelRounds; i += 2 {
		r ^= c.feistel(l) ^ c.p[i]
		l ^= c.feistel(r) ^ c.p[i+1]
	}
	return r ^ c.p[17], l
}

// Returns the next big-endian 32-bit word from data, advancing *j and
// wrapping around to the beginning when the stream runs out. The key
// schedule uses this to cycle short keys and salts.
func stream2word(data []byte, j *int) uint32 {
	var w uint32
	for i := 0; i < 4; i++ {
		w = w<<8 | uint32(data[*j])
		*j = (*j + 1) % len(data)
	}
	return w
}

// expandKey runs the textbook Blowfish key schedule: fold the key into
// the subkeys, then overwrite the subkeys and all four substitution
// boxes with successive encryptions of an evolving zero block.
func (c *cipherState) expandKey(key []byte) {
	j := 0
	for i := 0; i < subkeys; i++ {
		c.p[i] ^= stream2word(key, &j)
	}
	var l, r uint32
	for i := 0; i < subkeys; i += 2 {
		l, r = c.encipher(l, r)
		c.p[i], c.p[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l, r = c.encipher(l, r)
		c.s0[i], c.s0[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l, r = c.encipher(l, r)
		c.s1[i], c.s1[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l, r = c.encipher(l, r)
		c.s2[i], c.s2[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l, r = c.encipher(l, r)
		c.s3[i], c.s3[i+1] = l, r
	}
}

// expandKeySalted is expandKey with a second input: the evolving block
// is XORed with successive salt words before each encryption. The
// bcrypt setup phase runs this once to bind the state to the salt.
func (c *cipherState) expandKeySalted(salt, key []byte) {
	j := 0
	for i := 0; i < subkeys; i++ {
		c.p[i] ^= stream2word(key, &j)
	}
	j = 0
	var l, r uint32
	for i := 0; i < subkeys; i += 2 {
		l ^= stream2word(salt, &j)
		r ^= stream2word(salt, &j)
		l, r = c.encipher(l, r)
		c.p[i], c.p[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l ^= stream2word(salt, &j)
		r ^= stream2word(salt, &j)
		l, r = c.encipher(l, r)
		c.s0[i], c.s0[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l ^= stream2word(salt, &j)
		r ^= stream2word(salt, &j)
		l, r = c.encipher(l, r)
		c.s1[i], c.s1[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l ^= stream2word(salt, &j)
		r ^= stream2word(salt, &j)
		l, r = c.encipher(l, r)
		c.s2[i], c.s2[i+1] = l, r
	}
	for i := 0; i < sboxEntries; i += 2 {
		l ^= stream2word(salt, &j)
		r ^= stream2word(salt, &j)
		l, r = c.encipher(l, r)
		c.s3[i], c.s3[i+1] = l, r
	}
}

// eksSetup builds a cipher state specialized to the key, salt, and cost
// using the expensive key schedule: one salted expansion, then 2^cost
// alternating plain expansions of the key and the salt. This loop is
// the entire point of bcrypt and dominates the running time.
func eksSetup(key, salt []byte, cost uint) *cipherState {
	c := newCipherState()
	c.expandKeySalted(salt, key)
	for i := uint64(0); i < 1<<cost; i++ {
		c.expandKey(key)
		c.expandKey(salt)
	}
	return c
}
