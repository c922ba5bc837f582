// Package cache provides translation caching implementations.
//
// Entries are keyed by (source text, target language) and are never
// expired or invalidated: a translation, once stored, is served for as long
// as the backend keeps it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. The bool is false on a miss; a
	// non-nil error means the backend could not be read.
	Get(ctx context.Context, text, lang string) (string, bool, error)

	// Set stores a translation. Writing an existing key overwrites it with an
	// equivalent value.
	Set(ctx context.Context, text, lang, value string) error
}

// Entry is a single cached translation.
type Entry struct {
	Text  string `json:"text"`
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Enumerable is implemented by caches that can list their contents.
type Enumerable interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// Key returns the storage key for (text, lang): the SHA-256 of the source
// text followed by the language.
func Key(text, lang string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:]) + ":" + lang
}
