package translator

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash identifies a translation instance: the same (original,
// translated, source, target) tuple hashes identically in every document.
// Fields are separated by NUL so that ("ab","c") and ("a","bc") differ.
func ContentHash(original, translated, sourceLang, targetLang string) string {
	h := sha256.New()
	for i, part := range []string{original, translated, sourceLang, targetLang} {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
