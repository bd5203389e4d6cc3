package vecstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// TextHash returns a sha256 hash (hex) of the label text that was embedded.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
