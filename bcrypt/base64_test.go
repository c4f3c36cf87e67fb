package bcrypt

import (
	"bytes"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	for n := 0; n <= 64; n++ {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i*7 + n)
		}
		enc := base64Encode(raw)
		dec, err := base64Decode(string(enc))
		if err != nil {
			t.Fatalf("decode len %d: %v", n, err)
		}
		if !bytes.Equal(dec, raw) {
			t.Errorf("round trip len %d: got %v, want %v", n, dec, raw)
		}
	}
}

func TestBase64Alphabet(t *testing.T) {
	// An all-zero salt encodes to 22 dots, the first alphabet letter.
	got := string(base64Encode(make([]byte, 16)))
	want := "......................"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBase64DecodeErrors(t *testing.T) {
	table := []string{
		"ab=d",  // padding never appears
		"ab!d",  // outside the alphabet
		"AAAAA", // 30 bits cannot end on a byte boundary
		"$2a$",
	}

	for _, input := range table {
		if _, err := base64Decode(input); err != ErrInvalidEncoding {
			t.Errorf("decode(%q), got %v, want ErrInvalidEncoding", input, err)
		}
	}
}
