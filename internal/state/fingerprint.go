package state

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
)

// Fingerprint derives a content identity from a title: lower-cased, stripped
// of everything non-alphanumeric, then hashed. Re-issued stories under new
// URLs or feed keys collapse to the same fingerprint.
func Fingerprint(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
