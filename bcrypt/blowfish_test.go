package bcrypt

import (
	"encoding/binary"
	"testing"

	"golang.org/x/crypto/blowfish"
)

// Eric Young's classic Blowfish test vectors. After a plain expandKey
// the engine is standard Blowfish and must reproduce them.
func TestEncipherVectors(t *testing.T) {
	table := []struct {
		key    []byte
		l, r   uint32
		cl, cr uint32
	}{
		{make([]byte, 8), 0, 0, 0x4ef99745, 0x6198dd78},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			0xffffffff, 0xffffffff, 0x51866fd5, 0xb85ecb8a},
	}

	for _, row := range table {
		c := newCipherState()
		c.expandKey(row.key)
		l, r := c.encipher(row.l, row.r)
		if l != row.cl || r != row.cr {
			t.Errorf("encipher(%08x, %08x), got %08x %08x, want %08x %08x",
				row.l, row.r, l, r, row.cl, row.cr)
		}
	}
}

// After a plain expandKey the engine must agree with the reference
// Blowfish implementation for any key.
func TestEncipherAgainstReference(t *testing.T) {
	keys := [][]byte{
		[]byte("W"),
		[]byte("some key"),
		[]byte("OrpheanBeholderScryDoubt"),
		[]byte("a slightly longer key to cycle the subkey stream around"),
	}

	for _, key := range keys {
		ref, err := blowfish.NewCipher(key)
		if err != nil {
			t.Fatalf("NewCipher(%q): %v", key, err)
		}
		c := newCipherState()
		c.expandKey(key)

		var src, want [8]byte
		binary.BigEndian.PutUint32(src[0:], 0xdeadbeef)
		binary.BigEndian.PutUint32(src[4:], 0x00c0ffee)
		ref.Encrypt(want[:], src[:])

		l, r := c.encipher(0xdeadbeef, 0x00c0ffee)
		wl := binary.BigEndian.Uint32(want[0:])
		wr := binary.BigEndian.Uint32(want[4:])
		if l != wl || r != wr {
			t.Errorf("key %q: got %08x %08x, want %08x %08x", key, l, r, wl, wr)
		}
	}
}

func TestStream2word(t *testing.T) {
	data := []byte{1, 2, 3}
	j := 0
	table := []uint32{0x01020301, 0x02030102, 0x03010203}
	for i, want := range table {
		if got := stream2word(data, &j); got != want {
			t.Errorf("word %d: got %08x, want %08x", i, got, want)
		}
	}
	if j != 0 {
		t.Errorf("stream index did not wrap: %d", j)
	}
}

// The salted expansion must differ from the plain one, and a fresh
// state must start from the shared constants without aliasing them.
func TestExpandKeySalted(t *testing.T) {
	key := []byte("password\x00")
	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = byte(i)
	}

	plain := newCipherState()
	plain.expandKey(key)
	salted := newCipherState()
	salted.expandKeySalted(salt, key)
	if plain.p == salted.p {
		t.Error("salted expansion matched plain expansion")
	}

	if initialP[0] != 0x243f6a88 || initialP[17] != 0x8979fb1b {
		t.Error("initial subkey constants were mutated")
	}
}
