package bcrypt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	xbcrypt "golang.org/x/crypto/bcrypt"
)

// Vectors from the OpenBSD-derived test suite shipped with jBCrypt and
// py-bcrypt. Each must reproduce byte for byte.
var knownVectors = []struct {
	password string
	salt     string
	want     string
}{
	{"", "$2a$06$DCq7YPn5Rq63x1Lad4cll.",
		"$2a$06$DCq7YPn5Rq63x1Lad4cll.TV4S6ytwfsfvkgY8jIucDrjc8deX1s."},
	{"", "$2a$08$HqWuK6/Ng6sg9gQzbLrgb.",
		"$2a$08$HqWuK6/Ng6sg9gQzbLrgb.Tl.ZHfXLhvt/SgVyWhQqgqcZ7ZuUtye"},
	{"a", "$2a$06$m0CrhHm10qJ3lXRY.5zDGO",
		"$2a$06$m0CrhHm10qJ3lXRY.5zDGO3rS2KdeeWLuGmsfGlMfOxih58VYVfxe"},
	{"abc", "$2a$06$If6bvum7DFjUnE9p2uDeDu",
		"$2a$06$If6bvum7DFjUnE9p2uDeDu0YHzrHM6tf.iqN8.yx.jNN1ILEf7h0i"},
	{"abcdefghijklmnopqrstuvwxyz", "$2a$06$.rCVZVOThsIa97pEDOxvGu",
		"$2a$06$.rCVZVOThsIa97pEDOxvGuRRgzG64bvtJ0938xuqzv18d3ZpQhstC"},
	{"~!@#$%^&*()      ~!@#$%^&*()PNBFRD", "$2a$06$fPIsBO8qRqkjj273rfaOI.",
		"$2a$06$fPIsBO8qRqkjj273rfaOI.HtSV9jLDpTbZn782DC6/t7qT67P6FfO"},
	{"U*U", "$2a$05$CCCCCCCCCCCCCCCCCCCCC.",
		"$2a$05$CCCCCCCCCCCCCCCCCCCCC.E5YPO9kmyuRGyh0XouQYb4YMJKvyOeW"},
	{"U*U*", "$2a$05$CCCCCCCCCCCCCCCCCCCCC.",
		"$2a$05$CCCCCCCCCCCCCCCCCCCCC.VGOzA784oUp/Z0DY336zx7pLYAy0lwK"},
}

func TestKnownVectors(t *testing.T) {
	for _, row := range knownVectors {
		got, err := Hash([]byte(row.password), row.salt)
		if err != nil {
			t.Fatalf("Hash(%q, %q): %v", row.password, row.salt, err)
		}
		if got != row.want {
			t.Errorf("Hash(%q, %q)\n got %q\nwant %q",
				row.password, row.salt, got, row.want)
		}
	}
}

func TestDeterminism(t *testing.T) {
	salt := "$2a$06$DCq7YPn5Rq63x1Lad4cll."
	first, err := Hash([]byte("repeatable"), salt)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Hash([]byte("repeatable"), salt)
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Errorf("repeated hash differs: %q != %q", first, again)
	}
}

// Hashing against a previously produced hash must reuse its salt
// prefix and reproduce the hash exactly.
func TestRehashIdempotent(t *testing.T) {
	salt, err := GenerateSalt(MinCost)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := Hash([]byte("swordfish"), salt)
	if err != nil {
		t.Fatal(err)
	}
	rehash, err := Hash([]byte("swordfish"), hash)
	if err != nil {
		t.Fatal(err)
	}
	if rehash != hash {
		t.Errorf("rehash differs: %q != %q", rehash, hash)
	}
}

func TestGenerateSalt(t *testing.T) {
	table := []struct {
		cost int
		want string
	}{
		{0, "$2a$04$"},
		{3, "$2a$04$"},
		{4, "$2a$04$"},
		{12, "$2a$12$"},
		{31, "$2a$31$"},
		{99, "$2a$31$"},
	}

	for _, row := range table {
		salt, err := GenerateSalt(row.cost)
		if err != nil {
			t.Fatalf("GenerateSalt(%d): %v", row.cost, err)
		}
		if !strings.HasPrefix(salt, row.want) {
			t.Errorf("GenerateSalt(%d) = %q, want prefix %q",
				row.cost, salt, row.want)
		}
		if len(salt) != len(row.want)+encodedSaltLen {
			t.Errorf("GenerateSalt(%d) = %q, wrong length", row.cost, salt)
		}
	}
}

func TestGenerateSaltEntropy(t *testing.T) {
	saved := randomSource
	defer func() { randomSource = saved }()
	randomSource = bytes.NewReader(bytes.Repeat([]byte{0xaa}, 2*saltLen))

	a, err := GenerateSalt(MinCost)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateSalt(MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same entropy produced different salts: %q, %q", a, b)
	}
	if _, err := GenerateSalt(MinCost); err == nil {
		t.Error("expected error once the entropy source is drained")
	}
}

func TestHashErrors(t *testing.T) {
	table := []struct {
		salt string
		want error
	}{
		{"$2a$03$" + strings.Repeat(".", 22), ErrInvalidCost},
		{"$2a$32$" + strings.Repeat(".", 22), ErrInvalidCost},
		{"$2a$06$" + strings.Repeat(".", 20), ErrInvalidSaltLength}, // 15 bytes
		{"$2a$06$" + strings.Repeat(".", 23), ErrInvalidSaltLength}, // 17 bytes
		{"$3a$06$" + strings.Repeat(".", 22), ErrUnsupportedVersion},
		{"$2b$06$" + strings.Repeat(".", 22), ErrUnsupportedVersion},
		{"", ErrMalformedHash},
		{"no dollar signs at all", ErrMalformedHash},
		{"$2a$xx$" + strings.Repeat(".", 22), ErrMalformedHash},
		{"$2a$6$" + strings.Repeat(".", 22), ErrMalformedHash},
		{"$2a06$" + strings.Repeat(".", 22), ErrMalformedHash},
		{"$$06$" + strings.Repeat(".", 22), ErrMalformedHash},
		{"$2a$06$" + strings.Repeat("!", 22), ErrInvalidEncoding},
	}

	for _, row := range table {
		_, err := Hash([]byte("password"), row.salt)
		if err != row.want {
			t.Errorf("Hash(%q), got %v, want %v", row.salt, err, row.want)
		}
	}
}

func TestVerify(t *testing.T) {
	salt := "$2a$06$If6bvum7DFjUnE9p2uDeDu"
	hash, err := Hash([]byte("correct"), salt)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := Verify([]byte("correct"), hash)
	if err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	ok, err = Verify([]byte("wrong"), hash)
	if err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v", ok, err)
	}

	// A bare salt or a structurally broken string is an error, never a
	// silent false.
	if _, err := Verify([]byte("correct"), salt); err != ErrMalformedHash {
		t.Errorf("Verify against bare salt: %v", err)
	}
	if _, err := Verify([]byte("correct"), "$2a$06$short"); err == nil {
		t.Error("Verify against truncated hash: no error")
	}
	if _, err := Verify([]byte("correct"), "2a06nodollars"); err != ErrMalformedHash {
		t.Errorf("Verify against junk: %v", err)
	}
}

// Passwords beyond 72 bytes do not affect the hash.
func TestKeyTruncation(t *testing.T) {
	salt := "$2a$05$CCCCCCCCCCCCCCCCCCCCC."
	long := bytes.Repeat([]byte("x"), maxKeyLen)
	a, err := Hash(long, salt)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash(append(long, []byte("overflow")...), salt)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("bytes past the 72-byte limit changed the hash")
	}
	c, err := Hash(long[:maxKeyLen-1], salt)
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Error("byte within the 72-byte limit did not change the hash")
	}
}

func TestCost(t *testing.T) {
	cost, err := Cost(knownVectors[0].want)
	if err != nil {
		t.Fatal(err)
	}
	if cost != 6 {
		t.Errorf("Cost = %d, want 6", cost)
	}
	if _, err := Cost("not a hash"); err != ErrMalformedHash {
		t.Errorf("Cost of junk: %v", err)
	}
}

// Each cost increment doubles the schedule work. Timing grows
// accordingly, checked with a deliberately loose tolerance.
func TestCostScaling(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test skipped in short mode")
	}
	elapsed := func(salt string) time.Duration {
		start := time.Now()
		if _, err := Hash([]byte("timing"), salt); err != nil {
			t.Fatal(err)
		}
		return time.Since(start)
	}
	// Warm up, then compare two increments apart: expect roughly 4x.
	elapsed("$2a$06$DCq7YPn5Rq63x1Lad4cll.")
	t6 := elapsed("$2a$06$DCq7YPn5Rq63x1Lad4cll.")
	t8 := elapsed("$2a$08$HqWuK6/Ng6sg9gQzbLrgb.")
	ratio := float64(t8) / float64(t6)
	if ratio < 1.5 || ratio > 16 {
		t.Errorf("cost 6 -> 8 scaled by %.1fx, expected around 4x", ratio)
	}
}

// Hashes must interoperate with the reference implementation in both
// directions.
func TestInterop(t *testing.T) {
	salt := "$2a$06$m0CrhHm10qJ3lXRY.5zDGO"
	ours, err := Hash([]byte("interop"), salt)
	if err != nil {
		t.Fatal(err)
	}
	if err := xbcrypt.CompareHashAndPassword([]byte(ours), []byte("interop")); err != nil {
		t.Errorf("reference implementation rejected our hash: %v", err)
	}

	theirs, err := xbcrypt.GenerateFromPassword([]byte("interop"), 6)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := Verify([]byte("interop"), string(theirs))
	if err != nil || !ok {
		t.Errorf("failed to verify reference hash %q: %v, %v", theirs, ok, err)
	}
}
