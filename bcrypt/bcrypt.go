// Package bcrypt implements the OpenBSD Blowfish password hashing
// algorithm described in "A Future-Adaptable Password Scheme" by Niels
// Provos and David Mazieres. Passwords are hashed with a modified,
// deliberately expensive Blowfish key schedule whose cost is
// parametrized, so it can be raised as computers get faster.
//
// Hashes are produced and consumed in the crypt(3) interchange format:
//
//	$2a$12$<22 character salt><31 character checksum>
package bcrypt

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// MinCost and MaxCost bound the cost parameter. The work factor
	// doubles with each increment.
	MinCost = 4
	MaxCost = 31
	// DefaultCost is a reasonable interactive-login cost as of the
	// early 2020s.
	DefaultCost = 12

	majorVersion = '2'
	minorVersion = 'a'

	saltLen        = 16
	encodedSaltLen = 22
	encodedSumLen  = 31
	maxKeyLen      = 72

	// minRounds is the floor OpenBSD enforces on the expanded round
	// count 1<<cost.
	minRounds = 16

	// The magic text enciphered by the hash operation, interpreted as
	// three 64-bit blocks.
	magic       = "OrpheanBeholderScryDoubt"
	magicBlocks = len(magic) / 4
)

var (
	// ErrInvalidCost means the cost parameter is outside [MinCost, MaxCost].
	ErrInvalidCost = errors.New("bcrypt cost out of range")
	// ErrInvalidSaltLength means the decoded salt is not exactly 16 bytes.
	ErrInvalidSaltLength = errors.New("invalid bcrypt salt length")
	// ErrUnsupportedVersion means the hash was produced by a newer scheme
	// version than this package implements.
	ErrUnsupportedVersion = errors.New("unsupported bcrypt version")
	// ErrMalformedHash means the string is not structurally a bcrypt hash.
	ErrMalformedHash = errors.New("malformed bcrypt hash")
	// ErrInvalidEncoding means bytes outside the bcrypt base64 alphabet,
	// or an impossible encoded length.
	ErrInvalidEncoding = errors.New("invalid bcrypt base64 data")
)

// Source of salt entropy. Swapped out by tests.
var randomSource io.Reader = rand.Reader

// saltRecord is one parsed "$2a$NN$..." prefix.
type saltRecord struct {
	major, minor byte
	cost         int
	raw          []byte // always saltLen bytes
	sum          string // encoded checksum, empty for a bare salt
}

// Returns the version tag, e.g. "2a". The minor letter is optional.
func (r *saltRecord) version() string {
	if r.minor == 0 {
		return string(r.major)
	}
	return string([]byte{r.major, r.minor})
}

// GenerateSalt returns a random text salt for use with Hash. The cost
// controls the difficulty of hashing against this salt, growing as
// 2^cost; values outside [MinCost, MaxCost] are clamped into range.
func GenerateSalt(cost int) (string, error) {
	var raw [saltLen]byte
	if _, err := io.ReadFull(randomSource, raw[:]); err != nil {
		return "", err
	}
	if cost < MinCost {
		cost = MinCost
	}
	if cost > MaxCost {
		cost = MaxCost
	}
	return fmt.Sprintf("$%c%c$%02d$%s",
		majorVersion, minorVersion, cost, base64Encode(raw[:])), nil
}

// Hash derives the bcrypt hash of password against the given salt,
// which may come from GenerateSalt or be a previously produced hash,
// whose salt prefix is then reused. Returns the full crypt text, e.g.:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
func Hash(password []byte, salt string) (string, error) {
	rec, err := parseSalt(salt)
	if err != nil {
		return "", err
	}
	sum := hashPassword(password, rec)
	return fmt.Sprintf("$%s$%02d$%s%s",
		rec.version(), rec.cost, base64Encode(rec.raw), base64Encode(sum)), nil
}

// Verify reports whether password reproduces the given hash, comparing
// in constant time. A wrong password is a false result with a nil
// error; only a structurally invalid hash is an error.
func Verify(password []byte, hash string) (bool, error) {
	rec, err := parseSalt(hash)
	if err != nil {
		return false, err
	}
	if rec.sum == "" {
		// A bare salt has nothing to verify against.
		return false, ErrMalformedHash
	}
	computed, err := Hash(password, hash)
	if err != nil {
		return false, err
	}
	match := subtle.ConstantTimeCompare([]byte(computed), []byte(hash))
	return match == 1, nil
}

// Cost returns the cost factor a salt or hash was produced under, so
// callers can re-hash when their cost policy moves.
func Cost(hash string) (int, error) {
	rec, err := parseSalt(hash)
	if err != nil {
		return 0, err
	}
	return rec.cost, nil
}

// Splits and validates a salt or hash string. The raw salt length and
// the version ordering checks follow OpenBSD exactly.
func parseSalt(salt string) (*saltRecord, error) {
	if len(salt) < 7 || salt[0] != '$' {
		return nil, ErrMalformedHash
	}
	rest := salt[1:]

	// Version field: major digit plus optional minor letter.
	i := strings.IndexByte(rest, '$')
	if i < 1 || i > 2 {
		return nil, ErrMalformedHash
	}
	var rec saltRecord
	rec.major = rest[0]
	if rec.major < '0' || rec.major > '9' {
		return nil, ErrMalformedHash
	}
	if i == 2 {
		rec.minor = rest[1]
		if rec.minor < 'a' || rec.minor > 'z' {
			return nil, ErrMalformedHash
		}
	}
	if rec.major > majorVersion ||
		(rec.major == majorVersion && rec.minor > minorVersion) {
		return nil, ErrUnsupportedVersion
	}
	rest = rest[i+1:]

	// Cost field: exactly two digits, zero padded.
	i = strings.IndexByte(rest, '$')
	if i != 2 {
		return nil, ErrMalformedHash
	}
	d0, d1 := rest[0], rest[1]
	if d0 < '0' || d0 > '9' || d1 < '0' || d1 > '9' {
		return nil, ErrMalformedHash
	}
	rec.cost = int(d0-'0')*10 + int(d1-'0')
	if rec.cost < MinCost || rec.cost > MaxCost || 1<<uint(rec.cost) < minRounds {
		return nil, ErrInvalidCost
	}
	rest = rest[3:]

	// Salt field, optionally followed by the checksum of a full hash.
	seg := rest
	if len(rest) == encodedSaltLen+encodedSumLen {
		seg = rest[:encodedSaltLen]
		rec.sum = rest[encodedSaltLen:]
	}
	raw, err := base64Decode(seg)
	if err != nil {
		return nil, err
	}
	if len(raw) != saltLen {
		return nil, ErrInvalidSaltLength
	}
	rec.raw = raw
	return &rec, nil
}

// Runs the expensive key schedule and enciphers the magic text 64
// times, pairwise over its three blocks, feeding each pass's
// ciphertext to the next. Drops the last of the 24 output bytes, a
// quirk of the original implementation that every compatible bcrypt
// keeps.
func hashPassword(password []byte, rec *saltRecord) []byte {
	if len(password) > maxKeyLen {
		password = password[:maxKeyLen]
	}
	key := make([]byte, len(password), len(password)+1)
	copy(key, password)
	if rec.minor >= 'a' || len(key) == 0 {
		// Scheme versions from "2a" on include the C string's
		// terminating NUL in the key material. An empty key gets the
		// NUL regardless so the schedule has a byte to cycle over.
		key = append(key, 0)
	}

	c := eksSetup(key, rec.raw, uint(rec.cost))
	for i := range key {
		key[i] = 0
	}

	var block [magicBlocks]uint32
	text := []byte(magic)
	j := 0
	for i := range block {
		block[i] = stream2word(text, &j)
	}
	for i := 0; i < 64; i++ {
		for d := 0; d < magicBlocks; d += 2 {
			block[d], block[d+1] = c.encipher(block[d], block[d+1])
		}
	}

	out := make([]byte, 4*magicBlocks)
	for i, w := range block {
		binary.BigEndian.PutUint32(out[4*i:], w)
	}
	return out[:len(out)-1]
}
