package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the stable document ID for an article from its
// identity pair. The NUL separator keeps ("ab","c") and ("a","bc")
// from colliding.
func Fingerprint(title, source string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}
