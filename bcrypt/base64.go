package bcrypt

import "encoding/base64"

// bcrypt uses its own base64 alphabet, ordered unlike the standard one,
// and never emits padding.
const alphabet = "./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var encoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

// Returns src encoded with the bcrypt base64 alphabet.
func base64Encode(src []byte) []byte {
	dst := make([]byte, encoding.EncodedLen(len(src)))
	encoding.Encode(dst, src)
	return dst
}

// Returns the bytes encoded by src. A character outside the alphabet,
// or a length whose trailing bits cannot fall on a byte boundary, is
// ErrInvalidEncoding.
func base64Decode(src string) ([]byte, error) {
	dst := make([]byte, encoding.DecodedLen(len(src)))
	n, err := encoding.Decode(dst, []byte(src))
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return dst[:n], nil
}
