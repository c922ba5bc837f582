package classify

import (
	"strings"
	"sync"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/ashokgit/Ultimate-Translator-sub000/tokenize"
)

// Detect reports whether a string value is of some content type.
type Detect func(value string) bool

var (
	contentTypesMu sync.RWMutex
	contentTypes   = map[string]Detect{
		"uuid":     isUUID,
		"date":     isDate,
		"html":     hasHTMLTags,
		"markup":   isBareMarkup,
		"template": tokenize.Contains,
	}
)

// RegisterContentType makes a detector available to ContentType rules under
// name. Registering an existing name replaces it.
func RegisterContentType(name string, detect Detect) {
	contentTypesMu.Lock()
	defer contentTypesMu.Unlock()
	contentTypes[strings.ToLower(name)] = detect
}

func lookupContentType(name string) (Detect, bool) {
	contentTypesMu.RLock()
	defer contentTypesMu.RUnlock()
	d, ok := contentTypes[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

func isUUID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 32 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// isDate recognises free-form dates ("03/04/2024", "4 Mar 2024 10:00").
// Values must start with a digit so that prose like "May I help?" is not
// read as a date.
func isDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 40 || !unicode.IsDigit(rune(s[0])) {
		return false
	}
	_, err := dateparse.ParseAny(s)
	return err == nil
}

// hasHTMLTags reports whether s contains at least one element tag.
func hasHTMLTags(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

// isBareMarkup reports whether s is HTML without any visible text, e.g. an
// embed snippet or "<br/><hr/>".
func isBareMarkup(s string) bool {
	if !hasHTMLTags(s) {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return false
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text()) == ""
}
