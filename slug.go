package translator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

const (
	slugMinRunes = 5
	slugMaxRunes = 100

	urlKey     = "url"
	oldURLsKey = "old_urls"
)

// slugSourceKeys are tried in order before any other string field.
var slugSourceKeys = []string{"name", "title", "description", "overview"}

// Slugify lower-cases s, strips diacritics and joins runs of letters and
// digits with single hyphens: "Café Crème!" → "cafe-creme". Letters of
// other scripts are kept.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

func qualifies(n *document.Node) bool {
	s, ok := n.Str()
	if !ok {
		return false
	}
	l := utf8.RuneCountInString(strings.TrimSpace(s))
	return l >= slugMinRunes && l <= slugMaxRunes
}

// SlugEligible reports whether obj is a leaf entity: an object without
// nested objects or arrays (old_urls aside) holding at least one string of
// 5 to 100 characters.
func SlugEligible(obj *document.Node) bool {
	if obj.Kind() != document.Object {
		return false
	}
	found := false
	for _, k := range obj.Keys() {
		if k == oldURLsKey {
			continue
		}
		v, _ := obj.Get(k)
		if v.IsContainer() {
			return false
		}
		if k != urlKey && qualifies(v) {
			found = true
		}
	}
	return found
}

func slugSource(obj *document.Node) string {
	for _, k := range slugSourceKeys {
		if v, ok := obj.Get(k); ok {
			if s, ok := v.Str(); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	for _, k := range obj.Keys() {
		if k == urlKey || k == oldURLsKey {
			continue
		}
		v, _ := obj.Get(k)
		if qualifies(v) {
			s, _ := v.Str()
			return s
		}
	}
	return ""
}

// ApplySlug sets obj's url to the slug of its name (or title, description,
// overview, or first qualifying string). A different previous url is added
// to old_urls once. old_urls is always present afterwards. It returns false
// and leaves obj alone when no slug can be derived.
func ApplySlug(obj *document.Node) bool {
	slug := Slugify(slugSource(obj))
	if slug == "" {
		return false
	}

	history := document.NewArray()
	if prev, ok := obj.Get(oldURLsKey); ok && prev.Kind() == document.Array {
		history = prev
	}

	if cur, ok := obj.Get(urlKey); ok {
		if s, ok := cur.Str(); ok && s != "" && s != slug && !containsString(history, s) {
			history.Append(document.NewString(s))
		}
	}

	obj.Set(urlKey, document.NewString(slug))
	obj.Set(oldURLsKey, history)
	return true
}

func containsString(arr *document.Node, s string) bool {
	for _, item := range arr.Items() {
		if v, ok := item.Str(); ok && v == s {
			return true
		}
	}
	return false
}
