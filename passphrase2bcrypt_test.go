package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestFirstLine(t *testing.T) {
	table := []struct {
		input, want []byte
	}{
		{[]byte("hunter2\n"), []byte("hunter2")},
		{[]byte("hunter2\r\nsecond line\n"), []byte("hunter2")},
		{[]byte("no newline"), []byte("no newline")},
		{[]byte(""), nil},
	}

	dir, err := ioutil.TempDir("", "passphrase2bcrypt")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	for i, row := range table {
		name := filepath.Join(dir, "pw")
		if err := ioutil.WriteFile(name, row.input, 0600); err != nil {
			t.Fatal(err)
		}
		got, err := firstLine(name)
		if err != nil {
			t.Fatalf("firstLine (case %d): %v", i, err)
		}
		if !bytes.Equal(got, row.want) {
			t.Errorf("firstLine (case %d), got %q, want %q", i, got, row.want)
		}
	}
}

func TestPinentryDecode(t *testing.T) {
	table := []struct {
		input string
		want  []byte
		valid bool
	}{
		{"hunter2", []byte("hunter2"), true},
		{"with%20space", []byte("with space"), true},
		{"percent%25", []byte("percent%"), true},
		{"truncated%2", nil, false},
		{"bogus%zz", nil, false},
	}

	for _, row := range table {
		got, valid := pinentryDecode(row.input)
		if valid != row.valid {
			t.Errorf("pinentryDecode(%q) valid = %v, want %v",
				row.input, valid, row.valid)
			continue
		}
		if valid && !bytes.Equal(got, row.want) {
			t.Errorf("pinentryDecode(%q), got %q, want %q",
				row.input, got, row.want)
		}
	}
}
